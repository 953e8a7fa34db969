package handlers

import "net/http"

// PaymentSuccessHandler is the page Checkout redirects to after payment. The
// caller already gets the confirmation by voice and SMS; this page just
// closes the loop in the browser.
type PaymentSuccessHandler struct{}

func (h PaymentSuccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Pagamento confirmado! Pode fechar esta página e aguardar a retirada do seu pedido.\n"))
}
