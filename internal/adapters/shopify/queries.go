package shopify

const productFields = `
	id
	title
	description
	featuredImage {
		url
	}`

const productsQuery = `query GetProducts($query: String, $first: Int, $after: String, $last: Int, $before: String) {
	products(query: $query, first: $first, after: $after, last: $last, before: $before) {
		nodes {` + productFields + `
		}
		pageInfo {
			startCursor
			endCursor
			hasNextPage
			hasPreviousPage
		}
	}
}`

const productQuery = `query GetProduct($id: ID!) {
	product(id: $id) {` + productFields + `
	}
}`

const productUpdateMutation = `mutation updateProduct($input: ProductInput!) {
	productUpdate(input: $input) {
		product {` + productFields + `
		}
		userErrors {
			field
			message
		}
	}
}`

// JMESPath expressions for pulling failures out of a GraphQL response.
const (
	exprTopLevelErrors = `errors[].message`
	exprUserErrors     = `data.productUpdate.userErrors[].message`
)
