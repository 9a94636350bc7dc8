package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"krxbacktest/internal/market"
	"krxbacktest/types"
)

// portfolio owns cash and open positions for exactly one backtest run. State
// changes only through executeBuy, executeSell and markToMarket; each of the
// three is atomic with respect to a single simulated day, so callers never
// observe a half-updated portfolio.
type portfolio struct {
	cash         decimal.Decimal
	positions    map[string]*types.Position
	trades       []types.Trade
	equityCurve  []types.EquityPoint
	peakValue    decimal.Decimal
	drawdown     decimal.Decimal
	maxPositions int
	costs        market.CostModel
}

func newPortfolio(initialCash decimal.Decimal, maxPositions int, costs market.CostModel) *portfolio {
	return &portfolio{
		cash:         initialCash,
		positions:    make(map[string]*types.Position),
		peakValue:    initialCash,
		maxPositions: maxPositions,
		costs:        costs,
	}
}

// executeBuy fills a buy at price for at most desiredQty shares. The quantity
// is clamped down so qty*price*(1+buyCostRate) never exceeds cash, keeping
// cash non-negative by construction. Returns nil when the order is rejected:
// position capacity reached for a new symbol, or the clamped quantity falls
// below one share.
func (p *portfolio) executeBuy(symbol string, price decimal.Decimal, desiredQty decimal.Decimal, date time.Time, reason string) *types.Trade {
	if desiredQty.LessThan(decimal.NewFromInt(1)) || price.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	pos, held := p.positions[symbol]
	if !held && len(p.positions) >= p.maxPositions {
		return nil
	}

	one := decimal.NewFromInt(1)
	affordable := p.cash.Div(price.Mul(one.Add(p.costs.BuyCostRate()))).Floor()
	qty := decimal.Min(desiredQty.Floor(), affordable)
	if qty.LessThan(one) {
		return nil
	}

	value := price.Mul(qty)
	cost := p.costs.TransactionCost(value, types.SideTypeBuy)
	p.cash = p.cash.Sub(value).Sub(cost.Total())

	if held {
		pos.AvgPrice = weightedAvg(pos.AvgPrice, pos.Quantity, price, qty)
		pos.Quantity = pos.Quantity.Add(qty)
		pos.LastPrice = price
	} else {
		pos = &types.Position{
			Symbol:    symbol,
			Quantity:  qty,
			AvgPrice:  price,
			EntryDate: date,
			LastPrice: price,
		}
		p.positions[symbol] = pos
	}

	trade := types.Trade{
		ID:         p.nextTradeID(),
		Symbol:     symbol,
		Side:       types.SideTypeBuy,
		Quantity:   qty,
		Price:      price,
		Value:      value,
		Commission: cost.Commission,
		Tax:        cost.Tax,
		Slippage:   cost.MarketImpact,
		Date:       date,
		EntryPrice: price,
		Reason:     reason,
	}
	p.trades = append(p.trades, trade)
	return &p.trades[len(p.trades)-1]
}

// executeSell fills a sell at price. A zero or oversized qty is clamped to
// the held quantity. Returns nil when the symbol is not held, so a sell can
// never exceed the position.
func (p *portfolio) executeSell(symbol string, price decimal.Decimal, qty decimal.Decimal, date time.Time, reason string) *types.Trade {
	pos, held := p.positions[symbol]
	if !held || price.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	if qty.LessThanOrEqual(decimal.Zero) || qty.GreaterThan(pos.Quantity) {
		qty = pos.Quantity
	}

	value := price.Mul(qty)
	cost := p.costs.TransactionCost(value, types.SideTypeSell)
	netProceeds := value.Sub(cost.Total())
	pnl := netProceeds.Sub(qty.Mul(pos.AvgPrice))
	holdingDays := int(date.Sub(pos.EntryDate).Hours() / 24)

	p.cash = p.cash.Add(netProceeds)

	trade := types.Trade{
		ID:          p.nextTradeID(),
		Symbol:      symbol,
		Side:        types.SideTypeSell,
		Quantity:    qty,
		Price:       price,
		Value:       value,
		Commission:  cost.Commission,
		Tax:         cost.Tax,
		Slippage:    cost.MarketImpact,
		Date:        date,
		EntryPrice:  pos.AvgPrice,
		ExitPrice:   price,
		PnL:         pnl,
		HoldingDays: holdingDays,
		Reason:      reason,
	}
	p.trades = append(p.trades, trade)

	pos.Quantity = pos.Quantity.Sub(qty)
	pos.LastPrice = price
	if pos.Quantity.IsZero() {
		delete(p.positions, symbol)
	}

	return &p.trades[len(p.trades)-1]
}

// markToMarket revalues every position at the day's close, appends one equity
// row and rolls the peak/drawdown state forward.
func (p *portfolio) markToMarket(priceBySymbol map[string]decimal.Decimal, date time.Time) {
	positionsValue := decimal.Zero
	for sym, pos := range p.positions {
		if price, ok := priceBySymbol[sym]; ok {
			pos.LastPrice = price
		}
		positionsValue = positionsValue.Add(pos.MarketValue())
	}

	total := p.cash.Add(positionsValue)

	dailyReturn := decimal.Zero
	if n := len(p.equityCurve); n > 0 {
		prev := p.equityCurve[n-1].PortfolioValue
		if prev.GreaterThan(decimal.Zero) {
			dailyReturn = total.Sub(prev).Div(prev)
		}
	}

	if total.GreaterThan(p.peakValue) {
		p.peakValue = total
	}
	p.drawdown = decimal.Zero
	if p.peakValue.GreaterThan(decimal.Zero) {
		p.drawdown = total.Sub(p.peakValue).Div(p.peakValue)
	}

	p.equityCurve = append(p.equityCurve, types.EquityPoint{
		Date:           date,
		PortfolioValue: total,
		Cash:           p.cash,
		PositionsValue: positionsValue,
		DailyReturn:    dailyReturn,
		Drawdown:       p.drawdown,
	})
}

func (p *portfolio) position(symbol string) (*types.Position, bool) {
	pos, ok := p.positions[symbol]
	return pos, ok
}

func (p *portfolio) openPositions() int {
	return len(p.positions)
}

// nextTradeID numbers trades sequentially within the run so repeated runs of
// the same config produce identical trade logs.
func (p *portfolio) nextTradeID() string {
	return fmt.Sprintf("T%04d", len(p.trades)+1)
}

func weightedAvg(existingAvg, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvg.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
