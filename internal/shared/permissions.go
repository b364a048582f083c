package shared

// Report permissions granted per role group.
const (
	// PermViewProfits allows profit, cost, and margin fields in reports.
	PermViewProfits = "reports.view_profits"
	// PermViewAllReports lets an employee see every user's sales instead
	// of only their own.
	PermViewAllReports = "reports.view_all"
)

// Grants carries the report permissions resolved for a role group.
type Grants struct {
	CanViewProfits    bool
	CanViewAllReports bool
}
