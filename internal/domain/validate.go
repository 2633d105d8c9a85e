package domain

// Validatable is implemented by models with rules beyond their binding tags.
// Writers call Validate after binding and before persisting.
type Validatable interface {
	Validate() error
}
