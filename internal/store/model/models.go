package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Strategy modes. Promotion to canary or live requires the live gate.
const (
	ModePaper  = "paper"
	ModeCanary = "canary"
	ModeLive   = "live"
)

// Order ledger statuses. Blocked outcomes keep the concatenated reasons in
// Reason; only submitted rows carry a BrokerOrderID.
const (
	OrderStatusSubmitted     = "submitted"
	OrderStatusBlocked       = "blocked"
	OrderStatusRiskBlock     = "risk_block"
	OrderStatusStrategyError = "strategy_error"
	OrderStatusError         = "error"
)

// Run statuses.
const (
	RunStatusOK      = "ok"
	RunStatusPartial = "partial"
)

// Control flag keys in config_state.
const (
	KeyArmedLive      = "armed_live"
	KeyKillSwitch     = "kill_switch"
	KeyPaused         = "paused"
	KeyPeakEquity     = "peak_equity"
	KeyDayStartEquity = "day_start_equity"
)

// StateModel is one scalar control flag.
type StateModel struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (StateModel) TableName() string { return "config_state" }

// StrategyModel is a provisioned strategy row. Rows are never deleted;
// retiring a strategy means disabling it.
type StrategyModel struct {
	ID      int64          `gorm:"column:id;primaryKey"`
	Name    string         `gorm:"column:name"`
	Params  datatypes.JSON `gorm:"column:params;type:TEXT"`
	Enabled bool           `gorm:"column:enabled"`
	Mode    string         `gorm:"column:mode"`
	Version string         `gorm:"column:version"`
}

func (StrategyModel) TableName() string { return "strategies" }

// RunModel is one append-only cycle record.
type RunModel struct {
	ID        int64          `gorm:"column:id;primaryKey"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	Status    string         `gorm:"column:status"`
	Summary   string         `gorm:"column:summary"`
	Details   datatypes.JSON `gorm:"column:details;type:TEXT"`
}

func (RunModel) TableName() string { return "runs" }

// OrderModel is one append-only order outcome. Qty is the true computed
// quantity for every outcome, blocked ones included.
type OrderModel struct {
	ID            int64           `gorm:"column:id;primaryKey"`
	RunID         int64           `gorm:"column:run_id;index"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	Symbol        string          `gorm:"column:symbol"`
	Side          string          `gorm:"column:side"`
	Qty           decimal.Decimal `gorm:"column:qty;type:TEXT"`
	Status        string          `gorm:"column:status"`
	BrokerOrderID string          `gorm:"column:broker_order_id"`
	Reason        string          `gorm:"column:reason"`
}

func (OrderModel) TableName() string { return "orders" }

// RiskEventModel is one append-only governor block event.
type RiskEventModel struct {
	ID        int64          `gorm:"column:id;primaryKey"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	Level     string         `gorm:"column:level"`
	Reason    string         `gorm:"column:reason"`
	Context   datatypes.JSON `gorm:"column:context;type:TEXT"`
}

func (RiskEventModel) TableName() string { return "risk_events" }
