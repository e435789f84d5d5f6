package globalsearch

// CatalogItem is a product row as listed by the data-access layer.
type CatalogItem struct {
	ID    string `json:"id" dynamodbav:"id"`
	Title string `json:"title" dynamodbav:"title"`
	Slug  string `json:"slug" dynamodbav:"slug"`
	// Brand is optional.
	Brand string `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
}

// Customer is the account joined onto an order.
type Customer struct {
	Email    string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	FullName string `json:"full_name,omitempty" dynamodbav:"full_name,omitempty"`
}

// Order is an order row with its customer joined in.
type Order struct {
	ID string `json:"id" dynamodbav:"id"`
	// PaymentReference is the payment provider's order id, if one was issued.
	PaymentReference string `json:"payment_reference,omitempty" dynamodbav:"payment_reference,omitempty"`
	// Customer is nil when the order has no linked account.
	Customer *Customer `json:"customer,omitempty" dynamodbav:"customer,omitempty"`
}

// Account is a user account row.
type Account struct {
	ID       string `json:"id" dynamodbav:"id"`
	Email    string `json:"email" dynamodbav:"email"`
	FullName string `json:"full_name,omitempty" dynamodbav:"full_name,omitempty"`
}
