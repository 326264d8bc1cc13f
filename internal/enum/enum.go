package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	ReportStatusDraft     = "DRAFT"
	ReportStatusSubmitted = "SUBMITTED"
)

const (
	EntryStatusPending  = "PENDING"
	EntryStatusVerified = "VERIFIED"
	EntryStatusRejected = "REJECTED"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleLoket   = "LOKET"
	UserRoleKasir   = "KASIR"
	UserRoleFinance = "FINANCE"
	UserRoleOwner   = "OWNER"
)

const (
	EntrySourceOutlet    = "OUTLET"
	EntrySourceCustodian = "CUSTODIAN"
)

const (
	DirectionInflow  = "INFLOW"
	DirectionOutflow = "OUTFLOW"
)

const (
	ExpenseCategoryBankDeposit     = "BANK_DEPOSIT"
	ExpenseCategoryResellerDeposit = "RESELLER_DEPOSIT"
	ExpenseCategoryOther           = "OTHER"
)

const (
	ActivityTypeCreate = "CREATE"
	ActivityTypeUpdate = "UPDATE"
	ActivityTypeSubmit = "SUBMIT"
	ActivityTypeVerify = "VERIFY"
	ActivityTypeAlert  = "ALERT"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	TrendBucketDay   = "DAY"
	TrendBucketWeek  = "WEEK"
	TrendBucketMonth = "MONTH"
)

// SalesCategories is the fixed catalog of PPOB products an outlet can report.
var SalesCategories = []string{
	"Pulsa",
	"Paket Data",
	"PLN",
	"PDAM",
	"BPJS",
	"Telkom",
	"TV Kabel",
	"Game Voucher",
	"Tiket",
	"Lainnya",
}

// IsValidSalesCategory reports whether c is part of the fixed catalog.
func IsValidSalesCategory(c string) bool {
	for _, v := range SalesCategories {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidExpenseCategory reports whether c is a known expense category.
func IsValidExpenseCategory(c string) bool {
	switch c {
	case ExpenseCategoryBankDeposit, ExpenseCategoryResellerDeposit, ExpenseCategoryOther:
		return true
	}
	return false
}
