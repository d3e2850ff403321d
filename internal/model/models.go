package model

// All lists the tables the service owns, in migration order.
func All() []interface{} {
	return []interface{}{&Supplier{}, &Product{}, &Setting{}, &Secret{}}
}
