package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sales-segmentation/internal/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		label string
		want  domain.ChannelCategory
	}{
		{"ECOMMERCE", domain.ChannelDigital},
		{"Canal Ecommerce Web", domain.ChannelDigital},
		{"airbnb hosts", domain.ChannelDigital},
		{"VENTA EMPLEADOS", domain.ChannelDigital},
		{"DISTRIBUIDORES", domain.ChannelNational},
		{"MAYORISTAS NORTE", domain.ChannelNational},
		{"CADENAS", domain.ChannelNational},
		{domain.ChannelUnspecified, domain.ChannelOther},
		{"unspecified", domain.ChannelOther},
		{"", domain.ChannelNational},
		{"   ", domain.ChannelNational},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.label), "label %q", tt.label)
	}
}

func TestClassifier_CustomKeywords(t *testing.T) {
	c := NewClassifier([]string{"marketplace"})

	assert.Equal(t, domain.ChannelDigital, c.Classify("MARKETPLACE FALABELLA"))
	assert.Equal(t, domain.ChannelNational, c.Classify("ECOMMERCE"))
}

func TestClassifier_RoundTripIsStable(t *testing.T) {
	labels := []string{"ECOMMERCE", "DISTRIBUIDORES", "", domain.ChannelUnspecified, "x", "Employee store", "OTHER", "NATIONAL"}

	for _, kw := range [][]string{nil, {"marketplace"}} {
		c := NewClassifier(kw)
		for _, l := range labels {
			first := c.Classify(l)
			assert.Equal(t, first, c.Classify(first.String()), "label %q keywords %v", l, kw)
		}
	}
}
