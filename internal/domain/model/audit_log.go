package model

import "time"

// 注文ライフサイクル上の出来事。
type AuditAction string

const (
	//決済完了で注文を作った。
	AuditActionOrderCreated AuditAction = "ORDER_CREATED"
	//Printful側で製作に入った。
	AuditActionOrderProcessing AuditAction = "ORDER_PROCESSING"
	//発送済みにした。
	AuditActionOrderShipped AuditAction = "ORDER_SHIPPED"
	//発送メールを送れなかった（遷移はそのまま）。
	AuditActionNotificationFailed AuditAction = "NOTIFICATION_FAILED"
	//Printfulへの注文作成に失敗した（手動で再作成）。
	AuditActionFulfillmentFailed AuditAction = "FULFILLMENT_FAILED"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionOrderCreated, AuditActionOrderProcessing, AuditActionOrderShipped,
		AuditActionNotificationFailed, AuditActionFulfillmentFailed:
		return true
	}
	return false
}

// 何に対する操作か
type AuditResourceType string

const (
	//注文に対する操作。
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ（運用者が見るための記録）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//webhook / poll / checkout / admin:<sub> など。
	Actor string `gorm:"type:varchar(100);not null;index" json:"actor"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	//失敗時のエラーメッセージ
	Message string `gorm:"type:text" json:"message,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
