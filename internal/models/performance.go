package models

// Derived advertising metrics. Each returns nil when the denominator is
// zero: an undefined metric, not a zero one.

// ACOS is advertising cost of sale: spend/sales * 100.
func ACOS(spend, sales float64) *float64 {
	if sales == 0 {
		return nil
	}
	v := spend / sales * 100
	return &v
}

// ROAS is return on ad spend: sales/spend.
func ROAS(sales, spend float64) *float64 {
	if spend == 0 {
		return nil
	}
	v := sales / spend
	return &v
}

// CTR is click-through rate: clicks/impressions * 100.
func CTR(clicks, impressions float64) *float64 {
	if impressions == 0 {
		return nil
	}
	v := clicks / impressions * 100
	return &v
}

// CVR is conversion rate: orders/clicks * 100.
func CVR(orders, clicks float64) *float64 {
	if clicks == 0 {
		return nil
	}
	v := orders / clicks * 100
	return &v
}

// CPC is cost per click: spend/clicks.
func CPC(spend, clicks float64) *float64 {
	if clicks == 0 {
		return nil
	}
	v := spend / clicks
	return &v
}
