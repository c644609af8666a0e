package documents

// BankDetails are printed on quotes and invoices
type BankDetails struct {
	BankName      string
	AccountName   string
	AccountNumber string
	BranchCode    string
	AccountType   string
}

// Company is the business profile printed on every document
type Company struct {
	Name               string
	RegistrationNumber string
	VATNumber          string
	Phone              string
	Email              string
	Address            string
	Website            string
	CurrencySymbol     string
	PaymentTermsDays   int
	Bank               BankDetails
}

// HasBank reports whether banking details are configured
func (c Company) HasBank() bool {
	return c.Bank.AccountNumber != ""
}
