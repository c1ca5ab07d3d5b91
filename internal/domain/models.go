package domain

import "time"

// CalcRun represents one execution of the dispatch calculation.
type CalcRun struct {
	ID            int64     `json:"id" db:"id"`
	InventoryFile string    `json:"inventory_file" db:"inventory_file"`
	PromotionFile string    `json:"promotion_file" db:"promotion_file"`
	OutputFile    string    `json:"output_file" db:"output_file"`
	LeadTimeDays  int       `json:"lead_time_days" db:"lead_time_days"`
	Status        string    `json:"status" db:"status"`
	ErrorMessage  string    `json:"error_message" db:"error_message"`
	DetailRows    int       `json:"detail_rows" db:"detail_rows"`
	SummaryRows   int       `json:"summary_rows" db:"summary_rows"`
	WarningCount  int       `json:"warning_count" db:"warning_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	CompletedAt   time.Time `json:"completed_at" db:"completed_at"`
}

// RunWarning is one data-quality warning attached to a run.
type RunWarning struct {
	ID       int64  `json:"id" db:"id"`
	RunID    int64  `json:"run_id" db:"run_id"`
	Position int    `json:"position" db:"position"`
	Message  string `json:"message" db:"message"`
}

// DispatchDetail is one persisted per-(Article, Site) calculation row.
type DispatchDetail struct {
	ID           int64   `json:"id" db:"id"`
	RunID        int64   `json:"run_id" db:"run_id"`
	GroupNo      string  `json:"group_no" db:"group_no"`
	Article      string  `json:"article" db:"article"`
	Site         string  `json:"site" db:"site"`
	RPType       string  `json:"rp_type" db:"rp_type"`
	SupplySource int     `json:"supply_source" db:"supply_source"`
	IsPromoSKU   bool    `json:"is_promo_sku" db:"is_promo_sku"`
	NetStock     float64 `json:"net_stock" db:"net_stock"`
	Pending      float64 `json:"pending" db:"pending"`
	TotalDemand  float64 `json:"total_demand" db:"total_demand"`
	NetDemand    float64 `json:"net_demand" db:"net_demand"`
	DispatchQty  int     `json:"dispatch_qty" db:"dispatch_qty"`
	DNQty        int     `json:"dn_qty" db:"dn_qty"`
	DispatchType string  `json:"dispatch_type" db:"dispatch_type"`
	Remark       string  `json:"remark" db:"remark"`
}

// DispatchSummary is one persisted per-(Group, Article) aggregate row.
type DispatchSummary struct {
	ID                  int64   `json:"id" db:"id"`
	RunID               int64   `json:"run_id" db:"run_id"`
	GroupNo             string  `json:"group_no" db:"group_no"`
	Article             string  `json:"article" db:"article"`
	Description         string  `json:"description" db:"description"`
	TotalDemand         float64 `json:"total_demand" db:"total_demand"`
	TotalStock          float64 `json:"total_stock" db:"total_stock"`
	TotalPending        float64 `json:"total_pending" db:"total_pending"`
	TotalDispatch       int     `json:"total_dispatch" db:"total_dispatch"`
	TotalDNQty          int     `json:"total_dn_qty" db:"total_dn_qty"`
	DCStock             float64 `json:"dc_stock" db:"dc_stock"`
	EffectiveInventory  float64 `json:"effective_inventory" db:"effective_inventory"`
	InventoryStatus     string  `json:"inventory_status" db:"inventory_status"`
	InventoryDifference float64 `json:"inventory_difference" db:"inventory_difference"`
}

// RunFilter narrows run-history queries.
type RunFilter struct {
	Status   string `json:"status"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// DetailFilter narrows persisted detail queries for one run.
type DetailFilter struct {
	Article      string `json:"article"`
	Site         string `json:"site"`
	DispatchType string `json:"dispatch_type"`
	PromoOnly    bool   `json:"promo_only"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}
