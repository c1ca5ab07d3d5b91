package calc

// MOQPolicy controls how rows with a missing or non-positive MOQ behave in the
// standard replenishment path.
type MOQPolicy string

const (
	// MOQPolicyZero keeps MOQ at 0, which suppresses dispatch for the row.
	MOQPolicyZero MOQPolicy = "zero"
	// MOQPolicyOne substitutes an MOQ of 1 so a dispatch can still be rounded.
	MOQPolicyOne MOQPolicy = "one"
)

// ColumnNames maps the logical fields of the three inputs to the header names
// used in the source workbooks. All lookups are tolerant of case, spacing and
// punctuation (see table.NormalizeColumnName).
type ColumnNames struct {
	// File A (inventory extract, sheet "Sheet1")
	AArticle       string
	ASite          string
	ARPType        string
	ANetStock      string
	APending       string
	ASafetyStock   string
	ALastMonthSold string
	AMOQ           string
	ASupplySource  string
	AInQualityInsp string
	ABlocked       string

	// File A optional descriptive columns, carried through to the summary.
	ADescription string
	AHierarchy   string
	ALongText    string
	ADescPGroup  string

	// File B Sheet 1 (promotion targets)
	B1GroupNo    string
	B1Article    string
	B1SKUTarget  string
	B1TargetType string
	B1PromoDays  string
	B1CoverDays  string

	// File B Sheet 2 (site allocation percentages)
	B2Site string
	B2HK   string
	B2MO   string
	B2ALL  string
}

// Labels holds the user-facing classification strings. They default to the
// Cantonese labels the replenishment team works with, but are configurable so
// a deployment can localize without touching the rule engine.
type Labels struct {
	BuyerOrder      string // buyer must raise a purchase order
	GenerateDN      string // RP team generates a distribution note
	DirectDispatch  string // generic direct-to-store label
	NoReplenishment string // nothing to dispatch
	NotApplicable   string
	DirectRemark    string // remark attached to direct-to-store dispatch rows

	StatusLotForLot      string // supply source 2, enough stock, DC above threshold
	StatusConsolidation  string // supply source 2, enough stock, DC below threshold
	StatusBuyerAttention string // supply source 2, not enough stock
	StatusSufficient     string // supply source 1/4, enough stock
	StatusBuyerPO        string // supply source 1/4, not enough stock
	StatusDCShortage     string // fallback: dispatch exceeds DC stock
	StatusShortageFlag   string // fallback: demand exceeds available stock
	StatusOKFlag         string // fallback: demand covered
}

// Config is the full tunable surface of the calculation. It is a plain value
// passed into every stage; the same process can run two calculations with
// different policies side by side.
type Config struct {
	DaysInMonthForRate int     // divisor turning last-month sales into a daily rate
	DefaultCoverDays   int     // target cover days when File B provides none
	DefaultLeadTime    int     // lead time when the caller provides none
	LastMonthSoldCap   float64 // ceiling applied to Last Month Sold Qty

	// When true, negative net demand flows into dispatch unclamped.
	UseNegativeNetForDispatch bool

	MissingMOQPolicy MOQPolicy

	DispatchRPType string // replenishment type handled by the standard path
	DirectRPType   string // replenishment type pushed direct to store
	DCSiteCode     string // site code of the central distribution center

	// Conditional cap applied to the DN quantity: when Promotion Days exceeds
	// DNCapPromoDays, the DN quantity is limited to DNCapQty (snapped down to
	// an MOQ multiple).
	DNCapQty       float64
	DNCapPromoDays float64

	// DC stock threshold splitting the two "sufficient" verdicts for supply
	// source 2.
	DCStockThreshold float64

	Columns ColumnNames
	Labels  Labels
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DaysInMonthForRate:        30,
		DefaultCoverDays:          7,
		DefaultLeadTime:           0,
		LastMonthSoldCap:          100000,
		UseNegativeNetForDispatch: false,
		MissingMOQPolicy:          MOQPolicyZero,
		DispatchRPType:            "RF",
		DirectRPType:              "ND",
		DCSiteCode:                "D001",
		DNCapQty:                  50,
		DNCapPromoDays:            4,
		DCStockThreshold:          100,
		Columns: ColumnNames{
			AArticle:       "Article",
			ASite:          "Site",
			ARPType:        "RP Type",
			ANetStock:      "SaSa Net Stock",
			APending:       "Pending Received",
			ASafetyStock:   "Safety Stock",
			ALastMonthSold: "Last Month Sold Qty",
			AMOQ:           "MOQ",
			ASupplySource:  "Supply source",
			AInQualityInsp: "In Quality Insp.",
			ABlocked:       "Blocked",
			ADescription:   "Article Description",
			AHierarchy:     "Product Hierarchy",
			ALongText:      "Article Long Text (60 Chars)",
			ADescPGroup:    "Description p. group",
			B1GroupNo:      "Group No.",
			B1Article:      "Article",
			B1SKUTarget:    "SKU Target",
			B1TargetType:   "Target Type",
			B1PromoDays:    "Promotion Days",
			B1CoverDays:    "Target Cover Days",
			B2Site:         "Site",
			B2HK:           "Shop Target(HK)",
			B2MO:           "Shop Target(MO)",
			B2ALL:          "Shop Target(ALL)",
		},
		Labels: Labels{
			BuyerOrder:      "Buyer需要訂貨",
			GenerateDN:      "需生成 DN",
			DirectDispatch:  "ND",
			NoReplenishment: "無須補貨",
			NotApplicable:   "N/A",
			DirectRemark:    "ND 派貨",

			StatusLotForLot:      "庫存足夠, RP team會安排Lot For Lot",
			StatusConsolidation:  "庫存足夠目標數量, 但D001少於100件, 在需要時進行搓貨",
			StatusBuyerAttention: "庫存不足夠, 請Buyer留意",
			StatusSufficient:     "庫存足夠",
			StatusBuyerPO:        "庫存不足夠, 請Buyer開PO",
			StatusDCShortage:     "D001 缺貨",
			StatusShortageFlag:   "Y",
			StatusOKFlag:         "N",
		},
	}
}
