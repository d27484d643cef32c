package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"epaygate/config"
	"epaygate/entity"
	"epaygate/services"
)

const (
	checkoutOrder  = "/checkout/:order_id"
	customerChoice = "/customer/:customer_id/method"
	paymentSuccess = "/payment/success"
	paymentCancel  = "/payment/cancel/:order_id"
	paymentCode    = "/payment/code/:order_id"
	paymentError   = "/payment/error/:order_id"
	paymentNotify  = "/payment/notify"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	payments   services.Payments
	logger     services.LogHandler
}

func NewServer(conf *config.Config) *Server {

	server := Server{
		conf: conf,
	}

	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}

	return &server
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST(checkoutOrder, s.checkout)
	router.PUT(customerChoice, s.setPaymentChoice)
	router.GET(paymentSuccess, s.successPage)
	router.GET(paymentCancel, s.cancelPage)
	router.GET(paymentCode, s.codePage)
	router.GET(paymentError, s.errorPage)
	router.POST(paymentNotify, s.paymentNotify)
}

func (s *Server) SetPaymentsService(payments services.Payments) {
	s.payments = payments
}

func (s *Server) SetLogger(logger services.LogHandler) {
	s.logger = logger
}

func (s *Server) Start() error {
	if s.conf == nil {
		return fmt.Errorf("configuration not loaded")
	}

	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	if s.conf.Listen.TLS {
		s.logger.Info(fmt.Sprintf("starting https TLS on %s", serverAddress))
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Info(fmt.Sprintf("starting http on %s", serverAddress))
		err = s.httpServer.Serve(listener)
	}

	return err
}

// checkout triggers the payment flow for a placed order. The hosted flow and
// a successful direct flow both answer with a redirect; transport failures
// redirect to the generic gateway-error page with the order left Pending.
func (s *Server) checkout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	orderId := ps.ByName("order_id")
	id, err := strconv.Atoi(orderId)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] invalid order id: %s; %v", reqID, orderId, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := s.payments.Checkout(ctx, id)
	if err != nil {
		var configErr *ConfigError
		var validationErr *ValidationError
		var transportErr *TransportError
		switch {
		case errors.As(err, &configErr):
			s.logger.Warn(fmt.Sprintf("[%s] checkout order %v: %v", reqID, id, err))
			w.WriteHeader(http.StatusConflict)
		case errors.As(err, &validationErr):
			s.logger.Warn(fmt.Sprintf("[%s] checkout order %v: %v", reqID, id, err))
			w.WriteHeader(http.StatusBadRequest)
		case errors.As(err, &transportErr):
			s.logger.Error(fmt.Sprintf("[%s] checkout order %v", reqID, id), err)
			http.Redirect(w, r, fmt.Sprintf("/payment/error/%d", id), http.StatusFound)
		default:
			s.logger.Error(fmt.Sprintf("[%s] checkout order %v", reqID, id), err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

func (s *Server) setPaymentChoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	customerId := ps.ByName("customer_id")
	if customerId == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] payment choice: read request body", reqID), err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var request struct {
		Method entity.PaymentChoice `json:"method"`
	}
	if err = json.Unmarshal(body, &request); err != nil {
		s.logger.Error(fmt.Sprintf("[%s] payment choice: decode request body", reqID), err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err = s.payments.SetPaymentChoice(ctx, customerId, request.Method); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			s.logger.Warn(fmt.Sprintf("[%s] payment choice: %v", reqID, err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.logger.Error(fmt.Sprintf("[%s] save payment choice", reqID), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// successPage is the url_ok return target of the hosted flow. The actual
// payment confirmation arrives on the notification endpoint; this page only
// tells the customer the gateway handed them back.
func (s *Server) successPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writePage(w, map[string]string{"status": "returned"})
}

func (s *Server) cancelPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.writePage(w, map[string]string{
		"status":   "cancelled",
		"order_id": ps.ByName("order_id"),
	})
}

func (s *Server) codePage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.writePage(w, map[string]string{
		"status":   "code_issued",
		"order_id": ps.ByName("order_id"),
		"code":     r.URL.Query().Get("code"),
	})
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.writePage(w, map[string]string{
		"status":   "error",
		"order_id": ps.ByName("order_id"),
	})
}

func (s *Server) writePage(w http.ResponseWriter, page map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		s.logger.Error("write page", err)
	}
}

// paymentNotify receives the asynchronous gateway confirmation. The reply
// body acknowledges each payload line so the gateway stops retrying.
func (s *Server) paymentNotify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] payment notify: get body", reqID), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	reply, err := s.payments.Notify(ctx, body)
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] payment notify: process body", reqID), err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	if _, err = w.Write([]byte(reply)); err != nil {
		s.logger.Error(fmt.Sprintf("[%s] payment notify: write reply", reqID), err)
	}
}
