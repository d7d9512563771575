package categories

import "github.com/ledenadmin/ledenadmin/internal/model"

// Defaults returns the categories a new workspace starts with.
func Defaults() []Category {
	return []Category{
		{Name: "Lidgeld", Type: model.Income, Description: "Membership fees"},
		{Name: "Donatie", Type: model.Income, Description: "Donations (sadaqa)"},
		{Name: "Zakat", Type: model.Income, Description: "Zakat and zakat al-fitr"},
		{Name: "Subsidie", Type: model.Income, Description: "Grants"},
		{Name: "Huur", Type: model.Expense, Description: "Rent"},
		{Name: "Energie", Type: model.Expense, Description: "Gas, water and electricity"},
		{Name: "Onderhoud", Type: model.Expense, Description: "Repairs and maintenance"},
		{Name: "Bankkosten", Type: model.Expense, Description: "Bank charges"},
		{Name: "Activiteiten", Description: "Events and courses"},
		{Name: Placeholder, Description: "Not yet categorised"},
	}
}
