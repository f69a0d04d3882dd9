package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"sales-segmentation/internal/domain"
)

// reportNamespace scopes the name-based report ids.
var reportNamespace = uuid.MustParse("6f1c1f1e-52b4-4c59-9d0e-3f7a2f1d8a41")

// DefaultExcludeKeywords drop export sales from every report.
var DefaultExcludeKeywords = []string{"INTERNACIONAL"}

// Options configures a SegmentationUseCase.
type Options struct {
	CutoverYear     int
	DigitalKeywords []string
	LineAliases     []LineAlias
	ExcludeKeywords []string
	Scoring         ScoringTable
	Verbose         bool
}

// SegmentationUseCase orchestrates fetch, normalization, aggregation and scoring for one period.
// It holds no per-build state and is safe for concurrent builds if its sources are.
type SegmentationUseCase struct {
	router     Router
	sources    map[domain.SourceKind]TransactionSource
	lookup     ChannelLookup
	classifier Classifier
	scorer     Scorer
	aliases    []LineAlias
	exclude    []string
	verbose    bool
}

// NewSegmentationUseCase creates a new instance of the usecase. archive or live may be nil
// when that backend is not wired; periods routed to it then fail with domain.ErrNoSourceConfigured.
func NewSegmentationUseCase(archive, live TransactionSource, lookup ChannelLookup, opts Options) *SegmentationUseCase {
	sources := make(map[domain.SourceKind]TransactionSource, 2)
	if archive != nil {
		sources[domain.SourceArchive] = archive
	}
	if live != nil {
		sources[domain.SourceLive] = live
	}

	exclude := opts.ExcludeKeywords
	if exclude == nil {
		exclude = DefaultExcludeKeywords
	}
	upper := make([]string, 0, len(exclude))
	for _, k := range exclude {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
			upper = append(upper, k)
		}
	}

	scoring := opts.Scoring
	if scoring.Recency == nil {
		scoring = DefaultScoringTable()
	}

	return &SegmentationUseCase{
		router:     NewRouter(opts.CutoverYear),
		sources:    sources,
		lookup:     lookup,
		classifier: NewClassifier(opts.DigitalKeywords),
		scorer:     NewScorer(scoring),
		aliases:    opts.LineAliases,
		exclude:    upper,
		verbose:    opts.Verbose,
	}
}

// BuildSegmentation builds the segmentation report for months of year, measuring recency against asOf.
// Malformed rows are skipped and counted; a transaction after asOf fails the whole build.
func (uc *SegmentationUseCase) BuildSegmentation(ctx context.Context, year int, months domain.MonthRange, asOf time.Time) (*domain.SegmentationReport, error) {
	if err := months.Validate(); err != nil {
		return nil, err
	}
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	// Step 1: Routing
	kind := uc.router.Resolve(year)
	source, ok := uc.sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s (year %d)", domain.ErrNoSourceConfigured, kind, year)
	}

	// Step 2: Data Ingestion
	from, to := months.Bounds(year)
	rows, err := source.Fetch(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s transactions: %w", kind, err)
	}

	// Step 3: Normalization
	normalizer := NewNormalizer(uc.lookup, uc.aliases)
	txs := make([]domain.Transaction, 0, len(rows))
	discarded, excluded := 0, 0
	for i, raw := range rows {
		tx, err := normalizer.Normalize(ctx, raw)
		if err != nil {
			var malformed *domain.MalformedRowError
			if errors.As(err, &malformed) {
				discarded++
				if uc.verbose {
					log.Printf("[DEBUG] skipping row %d: %v", i, err)
				}
				continue
			}
			return nil, fmt.Errorf("could not normalize %s transactions: %w", kind, err)
		}
		if uc.isExcluded(tx) {
			excluded++
			continue
		}
		txs = append(txs, tx)
	}

	// Step 4: Aggregation
	customers, err := Aggregate(txs, asOf, uc.classifier)
	if err != nil {
		return nil, fmt.Errorf("could not aggregate transactions: %w", err)
	}

	// Step 5: Scoring and assembly
	report := BuildReport(customers, uc.scorer)
	report.ReportID = reportID(year, months, asOf, kind)
	report.Summary = domain.Summary{
		Year:            year,
		Months:          months,
		PeriodStart:     from.Format(time.DateOnly),
		PeriodEnd:       to.Format(time.DateOnly),
		AsOf:            asOf.Format(time.DateOnly),
		Source:          kind,
		RowsRead:        len(rows),
		RowsDiscarded:   discarded,
		RowsExcluded:    excluded,
		CustomersScored: len(customers),
	}

	log.Printf("[INFO] segmentation %d %02d-%02d source=%s rows=%d discarded=%d excluded=%d customers=%d",
		year, months.From, months.To, kind, len(rows), discarded, excluded, len(customers))

	return &report, nil
}

func (uc *SegmentationUseCase) isExcluded(tx domain.Transaction) bool {
	for _, k := range uc.exclude {
		if strings.Contains(tx.ChannelLabel, k) || strings.Contains(tx.LineOfBusiness, k) {
			return true
		}
	}
	return false
}

func reportID(year int, months domain.MonthRange, asOf time.Time, kind domain.SourceKind) string {
	key := fmt.Sprintf("%d|%02d|%02d|%s|%s", year, months.From, months.To, asOf.Format(time.DateOnly), kind)
	return uuid.NewSHA1(reportNamespace, []byte(key)).String()
}
