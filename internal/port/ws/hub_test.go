package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *auth.TokenManager, *httptest.Server) {
	t.Helper()
	tokens := auth.NewTokenManager("ws-secret", time.Hour, "marketplace")
	hub := NewHub(tokens, []string{"http://shop.local"}, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleOrders))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, tokens, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders?token=" + token
	return websocket.DefaultDialer.Dial(u, nil)
}

func TestHub_RoutesOrderEventsToBuyerAndSeller(t *testing.T) {
	hub, tokens, srv := startHub(t)

	buyerToken, err := tokens.Issue("buyer-1", "user", false)
	require.NoError(t, err)
	sellerToken, err := tokens.Issue("seller-user-1", "user", true)
	require.NoError(t, err)
	otherToken, err := tokens.Issue("someone-else", "user", false)
	require.NoError(t, err)

	buyer, _, err := dial(t, srv, buyerToken)
	require.NoError(t, err)
	defer buyer.Close()
	seller, _, err := dial(t, srv, sellerToken)
	require.NoError(t, err)
	defer seller.Close()
	other, _, err := dial(t, srv, otherToken)
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool {
		return hub.Connected("buyer-1") == 1 && hub.Connected("seller-user-1") == 1 && hub.Connected("someone-else") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.SendOrderEvent(service.SubjectOrderStatusUpdated, service.OrderEvent{
		OrderID:      "order-1",
		BuyerID:      "buyer-1",
		SellerID:     "seller-1",
		SellerUserID: "seller-user-1",
		Status:       entity.StatusShipped,
	})

	for _, conn := range []*websocket.Conn{buyer, seller} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, service.SubjectOrderStatusUpdated, msg.Type)
		assert.Equal(t, "order-1", msg.Order.OrderID)
		assert.Equal(t, entity.StatusShipped, msg.Order.Status)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_RejectsMissingOrInvalidToken(t *testing.T) {
	_, _, srv := startHub(t)

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "garbage")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, tokens, srv := startHub(t)
	token, err := tokens.Issue("buyer-2", "user", false)
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connected("buyer-2") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connected("buyer-2") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://shop.local"})

	r := httptest.NewRequest(http.MethodGet, "http://api.local/ws/orders", nil)
	assert.True(t, check(r), "no Origin header")

	r.Header.Set("Origin", "http://shop.local")
	assert.True(t, check(r))

	r.Header.Set("Origin", "http://api.local")
	assert.True(t, check(r), "same host")

	r.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
}

func TestHandleOrderMessage_IgnoresMalformedPayload(t *testing.T) {
	hub := NewHub(auth.NewTokenManager("x", time.Hour, "m"), nil, logger.NewNop())

	hub.HandleOrderMessage(context.Background(), service.SubjectOrderPaid, []byte("{not json"))
	hub.HandleOrderMessage(context.Background(), service.SubjectOrderPaid, []byte(`{"orderId":"o1"}`))
	assert.Len(t, hub.deliver, 0)

	hub.HandleOrderMessage(context.Background(), service.SubjectOrderPaid, []byte(`{"orderId":"o1","buyerId":"b1","sellerUserId":"s1"}`))
	require.Len(t, hub.deliver, 1)
	d := <-hub.deliver
	assert.Equal(t, []string{"b1", "s1"}, d.userIDs)
}
