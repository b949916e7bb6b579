package kis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/autotrader/market"
)

const (
	pathPrice    = "/uapi/domestic-stock/v1/quotations/inquire-price"
	pathDaily    = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	pathAsking   = "/uapi/domestic-stock/v1/quotations/inquire-asking-price-exp-ccn"
	pathSearch   = "/uapi/domestic-stock/v1/quotations/search-stock-info"
	orderBookLen = 10
)

// Transaction ids the quotation endpoints expect in the tr_id header.
const (
	trPrice  = "FHKST01010100"
	trDaily  = "FHKST03010100"
	trAsking = "FHKST01010200"
	trSearch = "CTPF1002R"
)

var intervals = map[string]string{
	"1m": "1",
	"5m": "5",
	"1h": "60",
	"D":  "D",
	"W":  "W",
	"M":  "M",
}

// PeriodCode maps a bar interval to the FID_PERIOD_DIV_CODE value. Unknown
// intervals fall back to daily.
func PeriodCode(interval string) string {
	if c, ok := intervals[interval]; ok {
		return c
	}
	return "D"
}

// MarketAPI fetches quotations. Every request obtains a token through Auth,
// refreshing it when needed.
type MarketAPI struct {
	auth    *Auth
	baseURL string
	opts    options
}

func NewMarketAPI(auth *Auth, baseURL string, opts ...Option) *MarketAPI {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if baseURL == "" {
		baseURL = LiveURL
	}
	return &MarketAPI{
		auth:    auth,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    o,
	}
}

// get performs an authenticated GET and decodes the JSON body into out.
func (m *MarketAPI) get(ctx context.Context, path, trID string, params url.Values, out any) error {
	if _, err := m.auth.AccessToken(ctx); err != nil {
		return err
	}
	headers, err := m.auth.Headers()
	if err != nil {
		return err
	}

	u := m.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = headers
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")

	resp, err := m.opts.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type priceResponse struct {
	Output struct {
		Price string `json:"stck_prpr"`
	} `json:"output"`
}

// GetPrice returns the current price for symbol.
func (m *MarketAPI) GetPrice(ctx context.Context, symbol string) (market.Price, error) {
	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", symbol)

	var r priceResponse
	if err := m.get(ctx, pathPrice, trPrice, params, &r); err != nil {
		return market.Price{}, fmt.Errorf("get price %s: %w", symbol, err)
	}
	if r.Output.Price == "" {
		return market.Price{}, fmt.Errorf("invalid price data for symbol %s", symbol)
	}
	p, err := strconv.ParseFloat(r.Output.Price, 64)
	if err != nil {
		return market.Price{}, fmt.Errorf("invalid price data for symbol %s: %w", symbol, err)
	}
	return market.Price{
		Symbol: symbol,
		Price:  p,
		Time:   m.opts.now().UTC(),
		Source: market.SourceKISRest,
	}, nil
}

// GetPrices fetches symbols one at a time. Failures are logged and the
// symbol is left out of the result.
func (m *MarketAPI) GetPrices(ctx context.Context, symbols []string) ([]market.Price, error) {
	out := make([]market.Price, 0, len(symbols))
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p, err := m.GetPrice(ctx, s)
		if err != nil {
			m.opts.logger.Warn().Err(err).Str("symbol", s).Msg("price fetch failed")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type dailyResponse struct {
	Output2 []struct {
		Date   string `json:"stck_bsop_date"`
		Open   string `json:"stck_oprc"`
		High   string `json:"stck_hgpr"`
		Low    string `json:"stck_lwpr"`
		Close  string `json:"stck_clpr"`
		Volume string `json:"acml_vol"`
	} `json:"output2"`
}

// GetHistoricalBars returns bars between start and end inclusive, in the
// order the API returns them.
func (m *MarketAPI) GetHistoricalBars(ctx context.Context, symbol string, start, end time.Time, interval string) ([]market.Bar, error) {
	if start.After(end) {
		return nil, errors.New("invalid date range: start date must be before end date")
	}

	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", symbol)
	params.Set("FID_INPUT_DATE_1", start.Format("20060102"))
	params.Set("FID_INPUT_DATE_2", end.Format("20060102"))
	params.Set("FID_PERIOD_DIV_CODE", PeriodCode(interval))
	params.Set("FID_ORG_ADJ_PRC", "0")

	var r dailyResponse
	if err := m.get(ctx, pathDaily, trDaily, params, &r); err != nil {
		return nil, fmt.Errorf("get historical bars %s: %w", symbol, err)
	}

	bars := make([]market.Bar, 0, len(r.Output2))
	for i, row := range r.Output2 {
		ts, err := time.ParseInLocation("20060102", row.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bar %d: parse date %q: %w", i, row.Date, err)
		}
		bars = append(bars, market.Bar{
			ID:     market.BarID(symbol, ts, i),
			Time:   ts,
			Symbol: symbol,
			Open:   num(row.Open),
			High:   num(row.High),
			Low:    num(row.Low),
			Close:  num(row.Close),
			Volume: int64(num(row.Volume)),
			Source: market.SourceKISRest,
		})
	}
	return bars, nil
}

// GetOrderBook returns up to ten levels per side. Levels missing either
// price or volume are dropped.
func (m *MarketAPI) GetOrderBook(ctx context.Context, symbol string) (market.OrderBook, error) {
	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", symbol)

	var r struct {
		Output1 map[string]string `json:"output1"`
	}
	if err := m.get(ctx, pathAsking, trAsking, params, &r); err != nil {
		return market.OrderBook{}, fmt.Errorf("get order book %s: %w", symbol, err)
	}

	book := market.OrderBook{Symbol: symbol, Time: m.opts.now().UTC()}
	book.Bids = levels(r.Output1, "bidp", "bidp_rsqn")
	book.Asks = levels(r.Output1, "askp", "askp_rsqn")
	return book, nil
}

func levels(out map[string]string, priceKey, qtyKey string) []market.OrderBookLevel {
	var lv []market.OrderBookLevel
	for i := 1; i <= orderBookLen; i++ {
		p := num(out[fmt.Sprintf("%s%d", priceKey, i)])
		q := int64(num(out[fmt.Sprintf("%s%d", qtyKey, i)]))
		if p > 0 && q > 0 {
			lv = append(lv, market.OrderBookLevel{Price: p, Volume: q})
		}
	}
	return lv
}

type searchResponse struct {
	Output json.RawMessage `json:"output"`
}

type searchItem struct {
	StdPdno  string `json:"std_pdno"`
	Pdno     string `json:"pdno"`
	PrdtName string `json:"prdt_name"`
}

// SearchSymbol looks up listing information by product number.
func (m *MarketAPI) SearchSymbol(ctx context.Context, keyword string) ([]market.SymbolInfo, error) {
	params := url.Values{}
	params.Set("PRDT_TYPE_CD", "300")
	params.Set("PDNO", keyword)

	var r searchResponse
	if err := m.get(ctx, pathSearch, trSearch, params, &r); err != nil {
		return nil, fmt.Errorf("search symbol %q: %w", keyword, err)
	}

	// output is an object for a single match and an array otherwise.
	var items []searchItem
	if len(r.Output) > 0 && r.Output[0] == '{' {
		var one searchItem
		if err := json.Unmarshal(r.Output, &one); err != nil {
			return nil, fmt.Errorf("decode search output: %w", err)
		}
		items = append(items, one)
	} else if len(r.Output) > 0 && string(r.Output) != "null" {
		if err := json.Unmarshal(r.Output, &items); err != nil {
			return nil, fmt.Errorf("decode search output: %w", err)
		}
	}

	out := make([]market.SymbolInfo, 0, len(items))
	for _, it := range items {
		if it.Pdno == "" {
			continue
		}
		info := market.SymbolInfo{
			ID:       it.StdPdno,
			Symbol:   it.Pdno,
			Name:     it.PrdtName,
			Exchange: market.KOSPI,
			Status:   market.Active,
		}
		if info.ID == "" {
			info.ID = it.Pdno
		}
		out = append(out, info)
	}
	return out, nil
}

// num parses the API's numeric strings; blanks and garbage read as zero.
func num(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
