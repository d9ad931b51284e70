package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/image-captioner/captioner/internal/adapters/shopify"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/domain/model"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage shop access tokens",
	}
	cmd.AddCommand(newSessionsSetCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	return cmd
}

func newSessionsSetCmd() *cobra.Command {
	var shop, token, scope string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the offline access token for a shop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain, err := shopify.NormalizeShopDomain(shop)
			if err != nil {
				return err
			}
			if strings.TrimSpace(token) == "" {
				return errors.New("--token is required")
			}

			env, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer env.Close()

			err = data.NewShopSessionRepo(env.DB).Upsert(cmd.Context(), model.ShopSession{
				Shop:        domain,
				AccessToken: strings.TrimSpace(token),
				Scope:       strings.TrimSpace(scope),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session stored for %s\n", domain)
			return nil
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "shop domain (*.myshopify.com)")
	cmd.Flags().StringVar(&token, "token", "", "Admin API access token")
	cmd.Flags().StringVar(&scope, "scope", "read_products,write_products", "granted scopes")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

func newSessionsDeleteCmd() *cobra.Command {
	var shop string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Forget a shop's access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain, err := shopify.NormalizeShopDomain(shop)
			if err != nil {
				return err
			}
			env, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer env.Close()

			deleted, err := data.NewShopSessionRepo(env.DB).DeleteByShop(cmd.Context(), domain)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("no session for %s", domain)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session deleted for %s\n", domain)
			return nil
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "shop domain (*.myshopify.com)")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

type settingsFlags struct {
	shop    string
	role    string
	backend string
	prompt  string
	apiKey  string
}

// toSettings validates flags before any connection is made.
func (f settingsFlags) toSettings() (model.CaptionSettings, error) {
	domain, err := shopify.NormalizeShopDomain(f.shop)
	if err != nil {
		return model.CaptionSettings{}, err
	}
	s := model.CaptionSettings{ShopID: domain}
	if f.role != "" {
		if err := s.Role.UnmarshalText([]byte(f.role)); err != nil {
			return s, err
		}
	}
	if f.backend != "" {
		if err := s.Backend.UnmarshalText([]byte(f.backend)); err != nil {
			return s, err
		}
	}
	if p := strings.TrimSpace(f.prompt); p != "" {
		s.CustomPrompt = &p
	}
	if k := strings.TrimSpace(f.apiKey); k != "" {
		s.APIKey = &k
	}
	return s, nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage per-shop captioning settings",
	}

	var f settingsFlags
	set := &cobra.Command{
		Use:   "set",
		Short: "Set role, backend, custom prompt or API key for a shop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := f.toSettings()
			if err != nil {
				return err
			}
			env, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer env.Close()

			saved, err := data.NewCaptionSettingsRepo(env.DB).Upsert(cmd.Context(), settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settings stored for %s: backend=%s role=%s\n",
				saved.ShopID, saved.EffectiveBackend(), saved.EffectiveRole())
			return nil
		},
	}
	set.Flags().StringVar(&f.shop, "shop", "", "shop domain (*.myshopify.com)")
	set.Flags().StringVar(&f.role, "role", "", "description role")
	set.Flags().StringVar(&f.backend, "backend", "", "captioning backend")
	set.Flags().StringVar(&f.prompt, "prompt", "", "custom prompt, overrides the role prompt")
	set.Flags().StringVar(&f.apiKey, "api-key", "", "captioning API key for this shop")
	_ = set.MarkFlagRequired("shop")

	cmd.AddCommand(set)
	return cmd
}
