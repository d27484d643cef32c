package internal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"epaygate/config"
	"epaygate/entity"
	"epaygate/services"
)

const (
	hostedSandboxUrl    = "https://demo.epay.bg/"
	hostedProductionUrl = "https://www.epay.bg/"
	directSandboxUrl    = "https://demo.epay.bg/ezp/reg_bill.cgi"
	directProductionUrl = "https://www.epay.bg/ezp/reg_bill.cgi"

	gatewayCallTimeout = 30 * time.Second
)

// Payments runs the checkout protocol against the ePay gateway. It implements
// both the checkout surface used by the server and the host payment-method
// contract. Fine-grained locking per order allows concurrent checkouts while
// keeping each order's mutations serial.
type Payments struct {
	conf     *config.Config
	database services.Database
	currency services.Currency
	logger   services.LogHandler
	client   *DirectClient
	locks    sync.Map // map[int]*sync.Mutex for per-order locking
}

func NewPayments(conf *config.Config) *Payments {
	return &Payments{
		conf:   conf,
		client: NewDirectClient(gatewayCallTimeout),
	}
}

func (p *Payments) SetDatabase(database services.Database) {
	p.database = database
}

func (p *Payments) SetCurrency(currency services.Currency) {
	p.currency = currency
}

func (p *Payments) SetLogger(logger services.LogHandler) {
	p.logger = logger
}

// lockOrder acquires a lock for a specific order to prevent concurrent
// modifications. Different orders still process in parallel.
func (p *Payments) lockOrder(id int) *sync.Mutex {
	value, _ := p.locks.LoadOrStore(id, &sync.Mutex{})
	mutex := value.(*sync.Mutex)
	mutex.Lock()
	return mutex
}

// unlockOrder releases the lock and removes the mutex from the map to prevent
// unbounded growth.
func (p *Payments) unlockOrder(id int, mutex *sync.Mutex) {
	mutex.Unlock()
	p.locks.Delete(id)
}

// gatewaySettings loads the persisted gateway settings, falling back to the
// config file when the settings store has none. The settings are read-only
// for the rest of the attempt.
func (p *Payments) gatewaySettings(ctx context.Context) *entity.GatewaySettings {
	if p.database != nil {
		settings, err := p.database.GetGatewaySettings(ctx)
		if err == nil && settings != nil {
			return settings
		}
	}
	return p.conf.GatewaySettings()
}

// hostedPageUrl returns the base URL of the gateway's hosted payment page.
// The production page carries a language suffix for non-Bulgarian customers.
func hostedPageUrl(settings *entity.GatewaySettings) string {
	if settings.UseSandbox {
		return hostedSandboxUrl
	}
	if !strings.EqualFold(settings.Language, "bg") {
		return hostedProductionUrl + "en/"
	}
	return hostedProductionUrl
}

func directApiUrl(settings *entity.GatewaySettings) string {
	if settings.UseSandbox {
		return directSandboxUrl
	}
	return directProductionUrl
}

func storeRoute(settings *entity.GatewaySettings, route string) string {
	return strings.TrimRight(settings.StoreUrl, "/") + route
}

// Checkout runs one payment attempt for an order: builds and signs the
// request, then dispatches on the customer's stored payment choice. The
// hosted flow returns a redirect URL without any network call; the direct
// flow makes exactly one synchronous call and interprets the reply. An
// absent or unrecognised choice fails the attempt before any flow starts —
// a customer is never defaulted into a financial flow they did not pick.
func (p *Payments) Checkout(ctx context.Context, orderId int) (*entity.CheckoutResult, error) {
	mutex := p.lockOrder(orderId)
	defer p.unlockOrder(orderId, mutex)

	if p.database == nil {
		return nil, fmt.Errorf("database not set")
	}
	order, err := p.database.GetOrder(ctx, orderId)
	if err != nil {
		return nil, fmt.Errorf("get order %v: %w", orderId, err)
	}

	settings := p.gatewaySettings(ctx)
	builder := NewRequestBuilder(settings, p.currency)

	request, err := builder.Build(ctx, order)
	if err != nil {
		return nil, err
	}
	pkg, err := builder.SignedPackage(request)
	if err != nil {
		return nil, err
	}

	choice, err := p.database.GetPaymentChoice(ctx, order.CustomerId)
	if err != nil {
		return nil, fmt.Errorf("get payment choice: %w", err)
	}

	switch choice {
	case entity.ChoiceEpay:
		if !settings.EnableEpay {
			return nil, &ConfigError{Reason: "epay flow disabled"}
		}
		return p.hostedRedirect(settings, order, pkg), nil
	case entity.ChoiceEasyPay:
		if !settings.EnableEasyPay {
			return nil, &ConfigError{Reason: "easypay flow disabled"}
		}
		return p.directCall(ctx, settings, order, pkg)
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("customer %s has no recognised payment choice", order.CustomerId)}
	}
}

// hostedRedirect builds the interactive-flow redirect. Payment confirmation
// for this flow arrives later on the notification endpoint; order storage is
// not touched here.
func (p *Payments) hostedRedirect(settings *entity.GatewaySettings, order *entity.Order, pkg *entity.SignedPackage) *entity.CheckoutResult {
	returnUrl := storeRoute(settings, "/payment/success")
	cancelUrl := storeRoute(settings, fmt.Sprintf("/payment/cancel/%d", order.Id))

	redirect := fmt.Sprintf("%s?PAGE=paylogin&encoded=%s&checksum=%s&url_ok=%s&url_cancel=%s",
		hostedPageUrl(settings),
		url.QueryEscape(pkg.Encoded),
		pkg.Checksum,
		url.QueryEscape(returnUrl),
		url.QueryEscape(cancelUrl))

	p.logger.Info(fmt.Sprintf("order %d: redirecting to hosted payment page", order.Id))
	return &entity.CheckoutResult{Flow: entity.ChoiceEpay, RedirectURL: redirect}
}

// directCall performs the synchronous flow: one round trip, then classify.
// The order is mutated only after a fully parsed success response, never
// speculatively; a failed or malformed reply leaves it Pending.
func (p *Payments) directCall(ctx context.Context, settings *entity.GatewaySettings, order *entity.Order, pkg *entity.SignedPackage) (*entity.CheckoutResult, error) {
	requestUrl := fmt.Sprintf("%s?encoded=%s&checksum=%s",
		directApiUrl(settings),
		url.QueryEscape(pkg.Encoded),
		pkg.Checksum)

	body, err := p.client.Call(ctx, requestUrl)
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			// malformed reply text classifies as a failed attempt
			p.logger.Warn(fmt.Sprintf("order %d: %v", order.Id, err))
			return p.directFailure(settings, order), nil
		}
		p.logger.Error(fmt.Sprintf("order %d: direct call", order.Id), err)
		return nil, err
	}

	response := InterpretResponse(body)
	if !response.Success() {
		p.logger.Warn(fmt.Sprintf("order %d: no payment code issued", order.Id))
		return p.directFailure(settings, order), nil
	}

	order.AddNote("EasyPay payment code: " + response.Code)
	order.TimeUpdated = time.Now().UTC()
	if err := p.database.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order %v: %w", order.Id, err)
	}
	p.logger.Info(fmt.Sprintf("order %d: payment code issued", order.Id))

	return &entity.CheckoutResult{
		Flow:        entity.ChoiceEasyPay,
		PaymentCode: response.Code,
		RedirectURL: storeRoute(settings, fmt.Sprintf("/payment/code/%d?code=%s", order.Id, url.QueryEscape(response.Code))),
	}, nil
}

func (p *Payments) directFailure(settings *entity.GatewaySettings, order *entity.Order) *entity.CheckoutResult {
	return &entity.CheckoutResult{
		Flow:        entity.ChoiceEasyPay,
		Failed:      true,
		RedirectURL: storeRoute(settings, fmt.Sprintf("/payment/error/%d", order.Id)),
	}
}

// SetPaymentChoice stores the customer's selection between the two flows.
func (p *Payments) SetPaymentChoice(ctx context.Context, customerId string, choice entity.PaymentChoice) error {
	if p.database == nil {
		return fmt.Errorf("database not set")
	}
	if !choice.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown payment choice %q", string(choice))}
	}
	return p.database.SavePaymentChoice(ctx, customerId, choice)
}

// Notify handles the asynchronous confirmation from the gateway. The body
// carries the same encoded+checksum pair the gateway signs on its side; the
// checksum is verified before the payload is trusted. Each payload line names
// an invoice and its status, and the reply acknowledges every line so the
// gateway stops retrying.
func (p *Payments) Notify(ctx context.Context, data []byte) (string, error) {
	params, err := url.ParseQuery(string(data))
	if err != nil {
		return "", &FormatError{Reason: "parse notification", Err: err}
	}
	encoded := params.Get("encoded")
	checksum := params.Get("checksum")
	if encoded == "" || checksum == "" {
		return "", &FormatError{Reason: "notification missing encoded or checksum"}
	}

	settings := p.gatewaySettings(ctx)
	signer := NewSigner(settings.SecretKey)
	if !signer.Verify(encoded, checksum) {
		return "", &ValidationError{Reason: "notification checksum mismatch"}
	}

	raw, err := Base64Decode(encoded)
	if err != nil {
		return "", err
	}
	payload, err := DecodeText(raw)
	if err != nil {
		return "", err
	}

	var reply []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reply = append(reply, p.processNotifyLine(ctx, line))
	}
	return strings.Join(reply, "\n"), nil
}

// processNotifyLine handles one "INVOICE=<n>:STATUS=<s>:..." line and returns
// the acknowledgement for it.
func (p *Payments) processNotifyLine(ctx context.Context, line string) string {
	fields := map[string]string{}
	for _, pair := range strings.Split(line, ":") {
		if key, value, found := strings.Cut(pair, "="); found {
			fields[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}
	}

	invoice := fields["INVOICE"]
	status := strings.ToUpper(fields["STATUS"])
	id, err := strconv.Atoi(invoice)
	if err != nil || invoice == "" {
		p.logger.Warn(fmt.Sprintf("notification line without valid invoice: %s", line))
		return fmt.Sprintf("INVOICE=%s:STATUS=ERR", invoice)
	}

	mutex := p.lockOrder(id)
	defer p.unlockOrder(id, mutex)

	order, err := p.database.GetOrder(ctx, id)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("notification for unknown order %v", id))
		return fmt.Sprintf("INVOICE=%s:STATUS=ERR", invoice)
	}

	switch status {
	case "PAID":
		if order.Status != entity.OrderStatusPaid {
			order.Status = entity.OrderStatusPaid
			order.AddNote("ePay payment confirmed")
			order.TimeUpdated = time.Now().UTC()
			if err := p.database.UpdateOrder(ctx, order); err != nil {
				p.logger.Error(fmt.Sprintf("update order %v", id), err)
				return fmt.Sprintf("INVOICE=%s:STATUS=ERR", invoice)
			}
		}
	case "DENIED", "EXPIRED":
		order.AddNote("ePay payment " + strings.ToLower(status))
		order.TimeUpdated = time.Now().UTC()
		if err := p.database.UpdateOrder(ctx, order); err != nil {
			p.logger.Error(fmt.Sprintf("update order %v", id), err)
		}
	default:
		p.logger.Warn(fmt.Sprintf("order %v: unhandled notification status %q", id, status))
	}
	return fmt.Sprintf("INVOICE=%s:STATUS=OK", invoice)
}

// ------------------------------------------------------------------
// host payment-method contract

// Process reserves the order: the attempt starts in Pending state and stays
// there until the gateway confirms.
func (p *Payments) Process(ctx context.Context, orderId int) (entity.OrderStatus, error) {
	return entity.OrderStatusPending, nil
}

// PostProcess runs the gateway flow for a placed order.
func (p *Payments) PostProcess(ctx context.Context, orderId int) (*entity.CheckoutResult, error) {
	return p.Checkout(ctx, orderId)
}

func (p *Payments) Capture(ctx context.Context, orderId int) error {
	return ErrNotSupported
}

func (p *Payments) Refund(ctx context.Context, orderId int) error {
	return ErrNotSupported
}

func (p *Payments) Void(ctx context.Context, orderId int) error {
	return ErrNotSupported
}

// AdditionalFee returns the handling fee for the given order total, fixed or
// percentage per gateway settings.
func (p *Payments) AdditionalFee(ctx context.Context, total float64) (float64, error) {
	settings := p.gatewaySettings(ctx)
	if settings.AdditionalFee == 0 {
		return 0, nil
	}
	if settings.AdditionalFeePercentage {
		return roundAmount(total * settings.AdditionalFee / 100), nil
	}
	return settings.AdditionalFee, nil
}

// CanRePost is always false: a placed order must not re-enter the flow, the
// customer re-initiates checkout instead.
func (p *Payments) CanRePost(order *entity.Order) bool {
	return false
}
