// Command lob is the interactive driver: it feeds orders to the
// engine in arrival order and formats inspection output. Prices are
// entered as decimals and converted to integer ticks.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"lob/domain/book"
	"lob/infra/memory"
	"lob/infra/sequence"
	"lob/service"
	"lob/snapshot"
)

const tickScale = 2 // 100.25 -> 10025 ticks

func main() {
	svc := service.NewOrderService(
		"LOB",
		book.New(),
		memory.NewPool(func() *book.Order { return &book.Order{} }),
		memory.NewRetireRing(1<<16),
		snapshot.NewReader(),
		sequence.New(0),
		nil, // no feed outbox in the local driver
		zerolog.Nop(),
	)

	fmt.Println("lob driver — type 'help' for commands")

	var nextID uint64 = 1
	sc := bufio.NewScanner(os.Stdin)
	for prompt(); sc.Scan(); prompt() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		if err := run(svc, line, &nextID); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func prompt() { fmt.Print("> ") }

func run(svc *service.OrderService, line string, nextID *uint64) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		usage()
		return nil

	case "limit":
		// limit buy|sell <price> <qty> [id]
		if len(args) < 3 {
			return errors.New("usage: limit buy|sell <price> <qty> [id]")
		}
		side, err := parseSide(args[0])
		if err != nil {
			return err
		}
		price, err := parsePrice(args[1])
		if err != nil {
			return err
		}
		qty, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q", args[2])
		}
		id, err := pickID(args[3:], nextID)
		if err != nil {
			return err
		}
		return place(svc, side, book.Limit, price, qty, id)

	case "market":
		// market buy|sell <qty> [id]
		if len(args) < 2 {
			return errors.New("usage: market buy|sell <qty> [id]")
		}
		side, err := parseSide(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q", args[1])
		}
		id, err := pickID(args[2:], nextID)
		if err != nil {
			return err
		}
		return place(svc, side, book.Market, 0, qty, id)

	case "cancel":
		if len(args) != 1 {
			return errors.New("usage: cancel <id>")
		}
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", args[0])
		}
		if svc.CancelOrder(id) {
			fmt.Printf("cancelled %d\n", id)
		} else {
			fmt.Printf("id %d not resting (already filled, cancelled, or unknown)\n", id)
		}
		return nil

	case "book":
		printBook(svc)
		return nil

	case "spread":
		if sp, ok := svc.Spread(); ok {
			fmt.Printf("spread: %s\n", fmtPrice(sp))
		} else {
			fmt.Println("spread: n/a (one side empty)")
		}
		return nil

	case "depth":
		if len(args) != 2 {
			return errors.New("usage: depth buy|sell <price>")
		}
		side, err := parseSide(args[0])
		if err != nil {
			return err
		}
		price, err := parsePrice(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("depth at %s: %d\n", fmtPrice(price), svc.DepthAtPrice(side, price))
		return nil

	case "top":
		if len(args) != 2 {
			return errors.New("usage: top buy|sell <n>")
		}
		side, err := parseSide(args[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("bad level count %q", args[1])
		}
		for _, lvl := range svc.TopLevels(side, n) {
			fmt.Printf("  %s  %d\n", fmtPrice(lvl.Price), lvl.Qty)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

func place(svc *service.OrderService, side book.Side, kind book.Kind, price, qty int64, id uint64) error {
	seq, trades, err := svc.PlaceOrder(side, kind, price, qty, id)
	if err != nil {
		return err
	}
	fmt.Printf("order %d accepted (seq %d)\n", id, seq)
	for _, tr := range trades {
		fmt.Printf("  trade: buy=%d sell=%d price=%s qty=%d\n",
			tr.BuyID, tr.SellID, fmtPrice(tr.Price), tr.Qty)
	}
	return nil
}

func printBook(svc *service.OrderService) {
	asks := svc.TopLevels(book.Sell, 10)
	bids := svc.TopLevels(book.Buy, 10)

	fmt.Println("asks (best last):")
	for i := len(asks) - 1; i >= 0; i-- {
		fmt.Printf("  %s  %d\n", fmtPrice(asks[i].Price), asks[i].Qty)
	}
	fmt.Println("bids (best first):")
	for _, lvl := range bids {
		fmt.Printf("  %s  %d\n", fmtPrice(lvl.Price), lvl.Qty)
	}
	if sp, ok := svc.Spread(); ok {
		fmt.Printf("spread: %s\n", fmtPrice(sp))
	}
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "buy", "bid", "b":
		return book.Buy, nil
	case "sell", "ask", "s":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("bad side %q (want buy or sell)", s)
	}
}

// parsePrice converts a human decimal price into integer ticks,
// rejecting sub-tick precision.
func parsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("bad price %q", s)
	}
	ticks := d.Shift(tickScale)
	if !ticks.IsInteger() {
		return 0, fmt.Errorf("price %s is finer than the tick size", s)
	}
	return ticks.IntPart(), nil
}

func fmtPrice(ticks int64) string {
	return decimal.New(ticks, -tickScale).StringFixed(tickScale)
}

func pickID(rest []string, nextID *uint64) (uint64, error) {
	if len(rest) == 0 {
		id := *nextID
		*nextID++
		return id, nil
	}
	id, err := strconv.ParseUint(rest[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", rest[0])
	}
	if id >= *nextID {
		*nextID = id + 1
	}
	return id, nil
}

func usage() {
	fmt.Println(`commands:
  limit buy|sell <price> <qty> [id]   submit a limit order
  market buy|sell <qty> [id]          submit a market order
  cancel <id>                         withdraw a resting order
  book                                top 10 levels per side
  spread                              best ask minus best bid
  depth buy|sell <price>              resting quantity at a price
  top buy|sell <n>                    best n levels on one side
  quit`)
}
