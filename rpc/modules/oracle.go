package modules

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"crosslend/native/oracle"
)

// OracleModule exposes the privileged manual price feed. Updates come from
// the oracle operator and are authenticated at the transport layer.
type OracleModule struct {
	feed *oracle.ManualFeed
}

func NewOracleModule(feed *oracle.ManualFeed) *OracleModule {
	return &OracleModule{feed: feed}
}

func (m *OracleModule) moduleUnavailable() *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "oracle module not available"}
}

func (m *OracleModule) SetPrice(asset, priceUSD string) *ModuleError {
	if m == nil || m.feed == nil {
		return m.moduleUnavailable()
	}
	price, ok := new(big.Int).SetString(strings.TrimSpace(priceUSD), 10)
	if !ok {
		return invalidParams(fmt.Sprintf("invalid price %q", priceUSD))
	}
	if err := m.feed.SetPrice(asset, price); err != nil {
		return invalidParams(err.Error())
	}
	return nil
}

// PriceView reports the last pushed quote.
type PriceView struct {
	Asset     string `json:"asset"`
	PriceUSD  string `json:"priceUSD"`
	Timestamp int64  `json:"timestamp"`
}

func (m *OracleModule) GetPrice(asset string) (*PriceView, *ModuleError) {
	if m == nil || m.feed == nil {
		return nil, m.moduleUnavailable()
	}
	quote, err := m.feed.GetPrice(asset)
	if err != nil {
		return nil, invalidParams(err.Error())
	}
	return &PriceView{
		Asset:     quote.Asset,
		PriceUSD:  quote.PriceUSD.String(),
		Timestamp: quote.Timestamp.Unix(),
	}, nil
}
