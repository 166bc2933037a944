package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// orderCreator is the slice of the razorpay SDK we call.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders orderCreator
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (*Intent, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	// the SDK call is blocking and takes no context
	done := make(chan result, 1)
	go func() {
		body, err := g.orders.Create(data, nil)
		done <- result{body: body, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, res.err)
	}

	return parseIntent(res.body)
}

func parseIntent(body map[string]interface{}) (*Intent, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: response without order id", ErrGatewayUnavailable)
	}

	intent := &Intent{ID: id}
	intent.Currency, _ = body["currency"].(string)
	intent.Receipt, _ = body["receipt"].(string)

	switch amount := body["amount"].(type) {
	case float64:
		intent.Amount = int64(amount)
	case int64:
		intent.Amount = amount
	case int:
		intent.Amount = int64(amount)
	}
	return intent, nil
}
