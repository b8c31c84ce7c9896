package model

// Employee is a roster row that can be turned into a recipient.
type Employee struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
	Designation    string
	Department     string
	Phone          string
	Active         bool
}

func (e *Employee) AsRecipient() RecipientInput {
	return RecipientInput{
		Name:        e.Name,
		Email:       e.Email,
		Designation: e.Designation,
		Department:  e.Department,
		Phone:       e.Phone,
	}
}
