package domain

import (
	"fmt"
	"strings"
)

// ChannelCategory is the coarse sales channel a customer is scored under.
type ChannelCategory string

const (
	ChannelDigital  ChannelCategory = "DIGITAL"
	ChannelNational ChannelCategory = "NATIONAL"
	ChannelOther    ChannelCategory = "OTHER"
)

// Categories lists every channel category in report order.
var Categories = []ChannelCategory{ChannelDigital, ChannelNational, ChannelOther}

func (c ChannelCategory) String() string { return string(c) }

// View selects a partition of a SegmentationReport: one channel category or ALL.
type View string

// ViewAll is the synthetic partition holding every scored customer.
const ViewAll View = "ALL"

// Views lists every report partition in report order.
var Views = []View{ViewAll, View(ChannelDigital), View(ChannelNational), View(ChannelOther)}

// ParseView accepts "all", "digital", "national" or "other" in any case.
func ParseView(s string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown channel view %q", s)
}
