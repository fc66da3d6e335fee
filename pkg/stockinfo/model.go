package stockinfo

import (
	"kiwoom/pkg/core"
)

// StockInfo is the ka10001 response: basic information of one stock.
// Prices and ratios are kept as the server's strings, sign prefix included;
// use Quote for numeric values.
type StockInfo struct {
	core.Envelope

	StockCode                  string                `json:"stock_code"`
	StockName                  string                `json:"stock_name"`
	MarketType                 core.Optional[string] `json:"market_type"`
	SettlementMonth            string                `json:"settlement_month"`
	FaceValue                  string                `json:"face_value"`
	Capital                    string                `json:"capital"`
	ListedShares               string                `json:"listed_shares"`
	CreditRatio                string                `json:"credit_ratio"`
	YearHigh                   string                `json:"year_high"`
	YearLow                    string                `json:"year_low"`
	MarketCap                  string                `json:"market_cap"`
	MarketCapWeight            core.Optional[string] `json:"market_cap_weight"`
	ForeignExhaustionRate      string                `json:"foreign_exhaustion_rate"`
	SubstitutePrice            string                `json:"substitute_price"`
	PER                        core.Optional[string] `json:"per"`
	EPS                        core.Optional[string] `json:"eps"`
	ROE                        core.Optional[string] `json:"roe"`
	PBR                        core.Optional[string] `json:"pbr"`
	EV                         core.Optional[string] `json:"ev"`
	BPS                        string                `json:"bps"`
	Sales                      string                `json:"sales"`
	OperatingProfit            string                `json:"operating_profit"`
	NetIncome                  string                `json:"net_income"`
	High250                    string                `json:"high_250"`
	Low250                     string                `json:"low_250"`
	OpeningPrice               string                `json:"opening_price"`
	HighPrice                  string                `json:"high_price"`
	LowPrice                   string                `json:"low_price"`
	UpperLimitPrice            string                `json:"upper_limit_price"`
	LowerLimitPrice            string                `json:"lower_limit_price"`
	StandardPrice              string                `json:"standard_price"`
	ExpectedConclusionPrice    string                `json:"expected_conclusion_price"`
	ExpectedConclusionQuantity string                `json:"expected_conclusion_quantity"`
	Date250High                string                `json:"date_250_high"`
	Rate250High                string                `json:"rate_250_high"`
	Date250Low                 string                `json:"date_250_low"`
	Rate250Low                 string                `json:"rate_250_low"`
	CurrentPrice               string                `json:"current_price"`
	PresentPrice               core.Optional[string] `json:"present_price"`
	ComparisonSymbol           core.Optional[string] `json:"comparison_symbol"`
	PreviousDayComparison      core.Optional[string] `json:"previous_day_comparison"`
	FluctuationRate            core.Optional[string] `json:"fluctuation_rate"`
	TradingVolume              core.Optional[string] `json:"trading_volume"`
	TradingComparison          core.Optional[string] `json:"trading_comparison"`
	FaceValueUnit              core.Optional[string] `json:"face_value_unit"`
	CirculatingShares          core.Optional[string] `json:"circulating_shares"`
	CirculationRatio           core.Optional[string] `json:"circulation_ratio"`
}

// field binds a wire key to a StockInfo field.
type field struct {
	key string
	req func(*StockInfo) *string
	opt func(*StockInfo) *core.Optional[string]
}

func required(key string, f func(*StockInfo) *string) field {
	return field{key: key, req: f}
}

func optional(key string, f func(*StockInfo) *core.Optional[string]) field {
	return field{key: key, opt: f}
}

// fields lists every wire alias in response order.
var fields = []field{
	required("stk_cd", func(s *StockInfo) *string { return &s.StockCode }),
	required("stk_nm", func(s *StockInfo) *string { return &s.StockName }),
	optional("mrkt_type", func(s *StockInfo) *core.Optional[string] { return &s.MarketType }),
	required("setl_mm", func(s *StockInfo) *string { return &s.SettlementMonth }),
	required("fav", func(s *StockInfo) *string { return &s.FaceValue }),
	required("cap", func(s *StockInfo) *string { return &s.Capital }),
	required("flo_stk", func(s *StockInfo) *string { return &s.ListedShares }),
	required("crd_rt", func(s *StockInfo) *string { return &s.CreditRatio }),
	required("oyr_hgst", func(s *StockInfo) *string { return &s.YearHigh }),
	required("oyr_lwst", func(s *StockInfo) *string { return &s.YearLow }),
	required("mac", func(s *StockInfo) *string { return &s.MarketCap }),
	optional("mac_wght", func(s *StockInfo) *core.Optional[string] { return &s.MarketCapWeight }),
	required("for_exh_rt", func(s *StockInfo) *string { return &s.ForeignExhaustionRate }),
	required("repl_pric", func(s *StockInfo) *string { return &s.SubstitutePrice }),
	optional("per", func(s *StockInfo) *core.Optional[string] { return &s.PER }),
	optional("eps", func(s *StockInfo) *core.Optional[string] { return &s.EPS }),
	optional("roe", func(s *StockInfo) *core.Optional[string] { return &s.ROE }),
	optional("pbr", func(s *StockInfo) *core.Optional[string] { return &s.PBR }),
	optional("ev", func(s *StockInfo) *core.Optional[string] { return &s.EV }),
	required("bps", func(s *StockInfo) *string { return &s.BPS }),
	required("sale_amt", func(s *StockInfo) *string { return &s.Sales }),
	required("bus_pro", func(s *StockInfo) *string { return &s.OperatingProfit }),
	required("cup_nga", func(s *StockInfo) *string { return &s.NetIncome }),
	required("250hgst", func(s *StockInfo) *string { return &s.High250 }),
	required("250lwst", func(s *StockInfo) *string { return &s.Low250 }),
	required("open_pric", func(s *StockInfo) *string { return &s.OpeningPrice }),
	required("high_pric", func(s *StockInfo) *string { return &s.HighPrice }),
	required("low_pric", func(s *StockInfo) *string { return &s.LowPrice }),
	required("upl_pric", func(s *StockInfo) *string { return &s.UpperLimitPrice }),
	required("lst_pric", func(s *StockInfo) *string { return &s.LowerLimitPrice }),
	required("base_pric", func(s *StockInfo) *string { return &s.StandardPrice }),
	required("exp_cntr_pric", func(s *StockInfo) *string { return &s.ExpectedConclusionPrice }),
	required("exp_cntr_qty", func(s *StockInfo) *string { return &s.ExpectedConclusionQuantity }),
	required("250hgst_pric_dt", func(s *StockInfo) *string { return &s.Date250High }),
	required("250hgst_pric_pre_rt", func(s *StockInfo) *string { return &s.Rate250High }),
	required("250lwst_pric_dt", func(s *StockInfo) *string { return &s.Date250Low }),
	required("250lwst_pric_pre_rt", func(s *StockInfo) *string { return &s.Rate250Low }),
	required("cur_prc", func(s *StockInfo) *string { return &s.CurrentPrice }),
	optional("prpr", func(s *StockInfo) *core.Optional[string] { return &s.PresentPrice }),
	optional("pre_sig", func(s *StockInfo) *core.Optional[string] { return &s.ComparisonSymbol }),
	optional("pred_pre", func(s *StockInfo) *core.Optional[string] { return &s.PreviousDayComparison }),
	optional("flu_rt", func(s *StockInfo) *core.Optional[string] { return &s.FluctuationRate }),
	optional("trde_qty", func(s *StockInfo) *core.Optional[string] { return &s.TradingVolume }),
	optional("trde_pre", func(s *StockInfo) *core.Optional[string] { return &s.TradingComparison }),
	optional("fav_unit", func(s *StockInfo) *core.Optional[string] { return &s.FaceValueUnit }),
	optional("dstr_stk", func(s *StockInfo) *core.Optional[string] { return &s.CirculatingShares }),
	optional("dstr_rt", func(s *StockInfo) *core.Optional[string] { return &s.CirculationRatio }),
}

// StockInfoSchema decodes a ka10001 response body. The first missing
// required field aborts decoding.
func StockInfoSchema(p core.Payload) (*StockInfo, error) {
	d := core.NewDecoder(p)
	info := &StockInfo{Envelope: d.Envelope()}
	for _, f := range fields {
		if f.req != nil {
			*f.req(info) = d.String(f.key)
		} else {
			*f.opt(info) = d.OptString(f.key)
		}
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return info, nil
}

// Encode returns the wire form of s, keyed by wire alias. Absent optional
// fields are omitted.
func (s *StockInfo) Encode() core.Payload {
	p := core.Payload{
		core.KeyReturnCode: s.ReturnCode,
		core.KeyReturnMsg:  s.ReturnMsg,
	}
	for _, f := range fields {
		if f.req != nil {
			p[f.key] = *f.req(s)
		} else if v, ok := f.opt(s).Get(); ok {
			p[f.key] = v
		}
	}
	return p
}
