package stockinfo

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"kiwoom/pkg/core"
)

// Quote is the numeric price view of a StockInfo.
type Quote struct {
	StockCode       string
	CurrentPrice    *apd.Decimal
	OpeningPrice    *apd.Decimal
	HighPrice       *apd.Decimal
	LowPrice        *apd.Decimal
	StandardPrice   *apd.Decimal
	UpperLimitPrice *apd.Decimal
	LowerLimitPrice *apd.Decimal
	// Change is the previous-day comparison, absent when the server left it blank.
	Change          core.Optional[*apd.Decimal]
	FluctuationRate core.Optional[*apd.Decimal]
	Volume          core.Optional[*apd.Decimal]
}

// Quote parses the price fields. Sign prefixes such as "+181400" and
// "-91200" are kept as the sign of the value.
func (s *StockInfo) Quote() (*Quote, error) {
	p := quoteParser{}
	q := &Quote{
		StockCode:       s.StockCode,
		CurrentPrice:    p.required("cur_prc", s.CurrentPrice),
		OpeningPrice:    p.required("open_pric", s.OpeningPrice),
		HighPrice:       p.required("high_pric", s.HighPrice),
		LowPrice:        p.required("low_pric", s.LowPrice),
		StandardPrice:   p.required("base_pric", s.StandardPrice),
		UpperLimitPrice: p.required("upl_pric", s.UpperLimitPrice),
		LowerLimitPrice: p.required("lst_pric", s.LowerLimitPrice),
		Change:          p.optional("pred_pre", s.PreviousDayComparison),
		FluctuationRate: p.optional("flu_rt", s.FluctuationRate),
		Volume:          p.optional("trde_qty", s.TradingVolume),
	}
	if p.err != nil {
		return nil, p.err
	}
	return q, nil
}

type quoteParser struct {
	err error
}

func (p *quoteParser) required(key, v string) *apd.Decimal {
	if p.err != nil {
		return nil
	}
	d, err := core.ParseDecimal(v)
	if err != nil {
		p.err = core.NewDecodeError(key, fmt.Sprintf("quote: %v", err))
		return nil
	}
	return d
}

func (p *quoteParser) optional(key string, v core.Optional[string]) core.Optional[*apd.Decimal] {
	s, ok := v.Get()
	if !ok {
		return core.None[*apd.Decimal]()
	}
	d := p.required(key, s)
	if d == nil {
		return core.None[*apd.Decimal]()
	}
	return core.Some(d)
}
