package usecase

import (
	"strings"

	"sales-segmentation/internal/domain"
)

// DefaultDigitalKeywords mark a channel label as DIGITAL.
var DefaultDigitalKeywords = []string{"ECOMMERCE", "E-COMMERCE", "DIGITAL", "ONLINE", "AIRBNB", "EMPLOYEE", "EMPLEADO"}

// Classifier maps channel labels to channel categories.
// Anything not explicitly digital is NATIONAL, except an unspecified channel which is OTHER.
type Classifier struct {
	digital []string
}

// NewClassifier creates a classifier. An empty keyword list falls back to DefaultDigitalKeywords.
func NewClassifier(digitalKeywords []string) Classifier {
	if len(digitalKeywords) == 0 {
		digitalKeywords = DefaultDigitalKeywords
	}
	kw := make([]string, 0, len(digitalKeywords))
	for _, k := range digitalKeywords {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	return Classifier{digital: kw}
}

// Classify never fails.
func (c Classifier) Classify(label string) domain.ChannelCategory {
	upper := strings.ToUpper(strings.TrimSpace(label))
	switch upper {
	case domain.ChannelUnspecified, string(domain.ChannelOther):
		return domain.ChannelOther
	case string(domain.ChannelDigital):
		return domain.ChannelDigital
	case string(domain.ChannelNational):
		return domain.ChannelNational
	}
	for _, k := range c.digital {
		if strings.Contains(upper, k) {
			return domain.ChannelDigital
		}
	}
	return domain.ChannelNational
}
