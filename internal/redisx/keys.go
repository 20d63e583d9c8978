package redisx

import "fmt"

// Bot reply cache: short-lived formatted replies keyed per owner. Stock
// replies are invalidated eagerly on stock writes; summary replies just age
// out.
const (
	keyStockReply   = "bot:stock:%s"
	keySummaryReply = "bot:summary:%s:%s"
)

func StockReplyKey(ownerID string) string {
	return fmt.Sprintf(keyStockReply, ownerID)
}

func SummaryReplyKey(ownerID, period string) string {
	return fmt.Sprintf(keySummaryReply, ownerID, period)
}
