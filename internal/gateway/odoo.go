package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sales-segmentation/internal/domain"
)

// OdooOptions configures the live ERP client.
type OdooOptions struct {
	URL       string
	DB        string
	User      string
	Password  string
	BatchSize int
	Timeout   time.Duration
	Verbose   bool
}

// OdooSource reads posted customer invoice lines from Odoo over JSON-RPC and resolves
// each partner's sales channel. It implements both TransactionSource and ChannelLookup.
type OdooSource struct {
	opts   OdooOptions
	client *http.Client

	mu       sync.Mutex
	uid      int
	channels map[string]string
	nextID   int
}

// NewOdooSource creates a client for the Odoo instance at opts.URL.
func NewOdooSource(opts OdooOptions) *OdooSource {
	if opts.BatchSize < 1 {
		opts.BatchSize = 500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	opts.URL = strings.TrimRight(opts.URL, "/")
	return &OdooSource{
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout},
		channels: make(map[string]string),
	}
}

// RPCError is an error object returned by the Odoo server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc error %d: %s: %s", e.Code, e.Message, e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	Service string        `json:"service"`
	Method  string        `json:"method"`
	Args    []interface{} `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// many2one decodes Odoo's [id, "display name"] pairs, which come back as false when unset.
type many2one struct {
	ID   int64
	Name string
	Set  bool
}

func (m *many2one) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil || len(pair) != 2 {
		*m = many2one{}
		return nil
	}
	if err := json.Unmarshal(pair[0], &m.ID); err != nil {
		return fmt.Errorf("many2one id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &m.Name); err != nil {
		return fmt.Errorf("many2one name: %w", err)
	}
	m.Set = true
	return nil
}

// odooString decodes char fields, which Odoo reports as false when empty.
type odooString string

func (s *odooString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = odooString(v)
	return nil
}

type moveLine struct {
	ID       int64       `json:"id"`
	Move     many2one    `json:"move_id"`
	MoveName odooString  `json:"move_name"`
	Partner  many2one    `json:"partner_id"`
	Product  many2one    `json:"product_id"`
	Balance  json.Number `json:"balance"`
	Date     odooString  `json:"date"`
}

type product struct {
	ID             int64    `json:"id"`
	CommercialLine many2one `json:"commercial_line_national_id"`
}

type partner struct {
	ID           int64    `json:"id"`
	SalesChannel many2one `json:"sales_channel_id"`
}

var lineFields = []string{"id", "move_id", "move_name", "partner_id", "product_id", "balance", "date"}

// Fetch returns posted invoice and refund lines dated within [from, to]. Amounts are
// revenue-signed: invoices positive, refunds negative. Partner channels are prefetched
// so the following LookupChannel calls hit the cache.
func (o *OdooSource) Fetch(ctx context.Context, from, to time.Time) ([]domain.RawRow, error) {
	filter := []interface{}{
		[]interface{}{"move_id.move_type", "in", []string{"out_invoice", "out_refund"}},
		[]interface{}{"move_id.state", "=", "posted"},
		[]interface{}{"product_id", "!=", false},
		[]interface{}{"date", ">=", from.Format(time.DateOnly)},
		[]interface{}{"date", "<=", to.Format(time.DateOnly)},
	}

	var ids []int64
	if err := o.executeKW(ctx, "account.move.line", "search", []interface{}{filter}, map[string]interface{}{"order": "id"}, &ids); err != nil {
		return nil, fmt.Errorf("could not search invoice lines: %w", err)
	}

	lines := make([]moveLine, 0, len(ids))
	for start := 0; start < len(ids); start += o.opts.BatchSize {
		batch := ids[start:min(start+o.opts.BatchSize, len(ids))]
		var page []moveLine
		if err := o.read(ctx, "account.move.line", batch, lineFields, &page); err != nil {
			return nil, fmt.Errorf("could not read invoice lines: %w", err)
		}
		lines = append(lines, page...)
		if o.opts.Verbose {
			log.Printf("[DEBUG] odoo lines batch %d/%d: %d", start/o.opts.BatchSize+1, (len(ids)+o.opts.BatchSize-1)/o.opts.BatchSize, len(page))
		}
	}

	productLines, err := o.productLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := o.prefetchChannels(ctx, lines); err != nil {
		return nil, err
	}

	rows := make([]domain.RawRow, 0, len(lines))
	for _, l := range lines {
		row := domain.LiveRow{
			OrderID:        string(l.MoveName),
			Date:           string(l.Date),
			Amount:         revenue(l.Balance),
			LineOfBusiness: productLines[l.Product.ID],
		}
		if row.OrderID == "" && l.Move.Set {
			row.OrderID = l.Move.Name
		}
		if l.Partner.Set {
			row.CustomerID = strconv.FormatInt(l.Partner.ID, 10)
			row.CustomerName = l.Partner.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LookupChannel returns the name of the partner's sales channel (crm.team).
func (o *OdooSource) LookupChannel(ctx context.Context, customerID string) (string, bool, error) {
	o.mu.Lock()
	label, cached := o.channels[customerID]
	o.mu.Unlock()
	if cached {
		return label, label != "", nil
	}

	id, err := strconv.ParseInt(customerID, 10, 64)
	if err != nil {
		return "", false, nil
	}
	if err := o.loadChannels(ctx, []int64{id}); err != nil {
		return "", false, err
	}

	o.mu.Lock()
	label = o.channels[customerID]
	o.mu.Unlock()
	return label, label != "", nil
}

func (o *OdooSource) productLines(ctx context.Context, lines []moveLine) (map[int64]string, error) {
	ids := uniqueIDs(lines, func(l moveLine) many2one { return l.Product })
	out := make(map[int64]string, len(ids))
	for start := 0; start < len(ids); start += o.opts.BatchSize {
		batch := ids[start:min(start+o.opts.BatchSize, len(ids))]
		var products []product
		if err := o.read(ctx, "product.product", batch, []string{"id", "commercial_line_national_id"}, &products); err != nil {
			return nil, fmt.Errorf("could not read products: %w", err)
		}
		for _, p := range products {
			if p.CommercialLine.Set {
				out[p.ID] = p.CommercialLine.Name
			}
		}
	}
	return out, nil
}

func (o *OdooSource) prefetchChannels(ctx context.Context, lines []moveLine) error {
	ids := uniqueIDs(lines, func(l moveLine) many2one { return l.Partner })

	o.mu.Lock()
	missing := ids[:0]
	for _, id := range ids {
		if _, ok := o.channels[strconv.FormatInt(id, 10)]; !ok {
			missing = append(missing, id)
		}
	}
	o.mu.Unlock()

	for start := 0; start < len(missing); start += o.opts.BatchSize {
		if err := o.loadChannels(ctx, missing[start:min(start+o.opts.BatchSize, len(missing))]); err != nil {
			return err
		}
	}
	return nil
}

// loadChannels caches the channel of every partner in ids. Partners without a channel
// are cached as empty so they are not asked for again.
func (o *OdooSource) loadChannels(ctx context.Context, ids []int64) error {
	var partners []partner
	if err := o.read(ctx, "res.partner", ids, []string{"id", "sales_channel_id"}, &partners); err != nil {
		return fmt.Errorf("could not read partner channels: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, id := range ids {
		o.channels[strconv.FormatInt(id, 10)] = ""
	}
	for _, p := range partners {
		if p.SalesChannel.Set {
			o.channels[strconv.FormatInt(p.ID, 10)] = p.SalesChannel.Name
		}
	}
	return nil
}

func (o *OdooSource) read(ctx context.Context, model string, ids []int64, fields []string, out interface{}) error {
	return o.executeKW(ctx, model, "read", []interface{}{ids}, map[string]interface{}{"fields": fields}, out)
}

func (o *OdooSource) executeKW(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, out interface{}) error {
	uid, err := o.login(ctx)
	if err != nil {
		return err
	}
	return o.call(ctx, "object", "execute_kw",
		[]interface{}{o.opts.DB, uid, o.opts.Password, model, method, args, kwargs}, out)
}

func (o *OdooSource) login(ctx context.Context) (int, error) {
	o.mu.Lock()
	uid := o.uid
	o.mu.Unlock()
	if uid != 0 {
		return uid, nil
	}

	var result json.RawMessage
	if err := o.call(ctx, "common", "login", []interface{}{o.opts.DB, o.opts.User, o.opts.Password}, &result); err != nil {
		return 0, fmt.Errorf("could not log in to odoo: %w", err)
	}
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		return 0, fmt.Errorf("could not log in to odoo: invalid credentials for %s", o.opts.User)
	}

	o.mu.Lock()
	o.uid = uid
	o.mu.Unlock()
	return uid, nil
}

func (o *OdooSource) call(ctx context.Context, service, method string, args []interface{}, out interface{}) error {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.mu.Unlock()

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      id,
	})
	if err != nil {
		return fmt.Errorf("failed to encode rpc payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.opts.URL+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("odoo returned an error: %s", resp.Status)
	}

	var decoded rpcResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if decoded.Error != nil {
		return decoded.Error
	}

	rdec := json.NewDecoder(bytes.NewReader(decoded.Result))
	rdec.UseNumber()
	if err := rdec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s.%s result: %w", service, method, err)
	}
	return nil
}

func uniqueIDs(lines []moveLine, field func(moveLine) many2one) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, l := range lines {
		ref := field(l)
		if ref.Set && !seen[ref.ID] {
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// revenue flips the sign of an income line balance, which Odoo books as a credit.
// An unparsable balance is passed through so the row is counted as malformed.
func revenue(balance json.Number) string {
	d, err := decimal.NewFromString(balance.String())
	if err != nil {
		return balance.String()
	}
	return d.Neg().String()
}
