package repository

import "time"

// TradingDay returns the UTC calendar day (YYYY-MM-DD) a trade is booked on.
// Spot crypto and equities share one boundary: midnight UTC.
func TradingDay(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// TradingDayNow returns the trading day for the current moment.
func TradingDayNow() string {
	return TradingDay(time.Now())
}
