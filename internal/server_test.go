package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaygate/config"
	"epaygate/entity"
)

// fakePayments scripts the service layer for handler tests.
type fakePayments struct {
	checkoutResult *entity.CheckoutResult
	checkoutErr    error
	choiceErr      error
	savedCustomer  string
	savedChoice    entity.PaymentChoice
	notifyReply    string
	notifyErr      error
	notifyBody     string
}

func (f *fakePayments) Checkout(context.Context, int) (*entity.CheckoutResult, error) {
	return f.checkoutResult, f.checkoutErr
}

func (f *fakePayments) SetPaymentChoice(_ context.Context, customerId string, choice entity.PaymentChoice) error {
	if f.choiceErr != nil {
		return f.choiceErr
	}
	f.savedCustomer = customerId
	f.savedChoice = choice
	return nil
}

func (f *fakePayments) Notify(_ context.Context, data []byte) (string, error) {
	f.notifyBody = string(data)
	return f.notifyReply, f.notifyErr
}

func newTestServer(payments *fakePayments) *Server {
	server := NewServer(&config.Config{})
	server.SetLogger(NewLogger("server", false, nil))
	server.SetPaymentsService(payments)
	return server
}

func serve(server *Server, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(w, r)
	return w
}

func TestCheckoutHandler(t *testing.T) {
	t.Run("RedirectsToGateway", func(t *testing.T) {
		payments := &fakePayments{
			checkoutResult: &entity.CheckoutResult{
				Flow:        entity.ChoiceEpay,
				RedirectURL: "https://demo.epay.bg/?PAGE=paylogin",
			},
		}
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/checkout/42", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://demo.epay.bg/?PAGE=paylogin", w.Header().Get("Location"))
	})

	t.Run("NonNumericOrderId", func(t *testing.T) {
		w := serve(newTestServer(&fakePayments{}), httptest.NewRequest(http.MethodPost, "/checkout/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ConfigErrorIsConflict", func(t *testing.T) {
		payments := &fakePayments{checkoutErr: &ConfigError{Reason: "no payment choice"}}
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/checkout/42", nil))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ValidationErrorIsBadRequest", func(t *testing.T) {
		payments := &fakePayments{checkoutErr: &ValidationError{Reason: "bad payload"}}
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/checkout/42", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("TransportErrorRedirectsToErrorPage", func(t *testing.T) {
		payments := &fakePayments{checkoutErr: &TransportError{Err: assert.AnError}}
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/checkout/42", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/payment/error/42", w.Header().Get("Location"))
	})

	t.Run("UnknownErrorIsServerError", func(t *testing.T) {
		payments := &fakePayments{checkoutErr: assert.AnError}
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/checkout/42", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSetPaymentChoiceHandler(t *testing.T) {
	t.Run("StoresChoice", func(t *testing.T) {
		payments := &fakePayments{}
		body := strings.NewReader(`{"method":"easypay"}`)
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPut, "/customer/c-1/method", body))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "c-1", payments.savedCustomer)
		assert.Equal(t, entity.ChoiceEasyPay, payments.savedChoice)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		body := strings.NewReader(`{"method":`)
		w := serve(newTestServer(&fakePayments{}), httptest.NewRequest(http.MethodPut, "/customer/c-1/method", body))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownChoice", func(t *testing.T) {
		payments := &fakePayments{choiceErr: &ValidationError{Reason: "unknown payment choice"}}
		body := strings.NewReader(`{"method":"wire"}`)
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPut, "/customer/c-1/method", body))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReturnPages(t *testing.T) {
	server := newTestServer(&fakePayments{})

	t.Run("Success", func(t *testing.T) {
		w := serve(server, httptest.NewRequest(http.MethodGet, "/payment/success", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), `"status":"returned"`)
	})

	t.Run("Cancel", func(t *testing.T) {
		w := serve(server, httptest.NewRequest(http.MethodGet, "/payment/cancel/42", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"order_id":"42"`)
		assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	})

	t.Run("Code", func(t *testing.T) {
		w := serve(server, httptest.NewRequest(http.MethodGet, "/payment/code/42?code=12345", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"12345"`)
	})

	t.Run("Error", func(t *testing.T) {
		w := serve(server, httptest.NewRequest(http.MethodGet, "/payment/error/42", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"error"`)
	})
}

func TestPaymentNotifyHandler(t *testing.T) {
	t.Run("AcknowledgesLines", func(t *testing.T) {
		payments := &fakePayments{notifyReply: "INVOICE=42:STATUS=OK"}
		body := strings.NewReader("encoded=abc&checksum=def")
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/payment/notify", body))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
		assert.Equal(t, "INVOICE=42:STATUS=OK", w.Body.String())
		assert.Equal(t, "encoded=abc&checksum=def", payments.notifyBody)
	})

	t.Run("RejectedNotification", func(t *testing.T) {
		payments := &fakePayments{notifyErr: &ValidationError{Reason: "notification checksum mismatch"}}
		w := serve(newTestServer(payments), httptest.NewRequest(http.MethodPost, "/payment/notify", strings.NewReader("encoded=abc&checksum=bad")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
