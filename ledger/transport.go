package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/wojake/B2M-testnet/entities"
)

// Transport carries one rippled command and returns its raw result object.
// Server side failures are returned as *entities.RPCError.
type Transport interface {
	Request(ctx context.Context, command string, params map[string]any) (json.RawMessage, error)
	Close() error
}

type wsTransport struct {
	conn   *websocket.Conn
	mux    sync.Mutex
	nextID uint64
}

type wsResponse struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Error        string          `json:"error"`
	ErrorCode    int             `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
	Result       json.RawMessage `json:"result"`
}

func dialWebsocket(ctx context.Context, url string) (*wsTransport, error) {
	dialer := *websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Request(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	t.mux.Lock()
	defer t.mux.Unlock()

	t.nextID++
	id := t.nextID
	payload := map[string]any{}
	for k, v := range params {
		payload[k] = v
	}
	payload["id"] = id
	payload["command"] = command

	deadline, _ := ctx.Deadline() // zero value clears any previous deadline
	t.conn.SetWriteDeadline(deadline)
	t.conn.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		t.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := t.conn.WriteJSON(payload); err != nil {
		return nil, fmt.Errorf("websocket write: %w", err)
	}
	for {
		var resp wsResponse
		if err := t.conn.ReadJSON(&resp); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("websocket read: %w", err)
		}
		// skip stream messages and stale responses
		if resp.Type != "response" || resp.ID != id {
			continue
		}
		if resp.Status == "error" || resp.Error != "" {
			return nil, &entities.RPCError{Code: resp.Error, Number: resp.ErrorCode, Message: resp.ErrorMessage}
		}
		return resp.Result, nil
	}
}

func (t *wsTransport) Close() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return t.conn.Close()
}

type httpTransport struct {
	client *resty.Client
	url    string
}

func newHTTPTransport(url string) *httpTransport {
	client := resty.New().SetHeader("Content-Type", "application/json")
	return &httpTransport{client: client, url: url}
}

func (t *httpTransport) Request(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	response, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"method": command,
			"params": []any{params},
		}).
		Post(t.url)
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("response status code: %v", response.StatusCode())
	}

	var body struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(response.Body(), &body); err != nil {
		return nil, fmt.Errorf("could not parse response: %w", err)
	}
	var base entities.RPCBaseRes
	if err := json.Unmarshal(body.Result, &base); err != nil {
		return nil, fmt.Errorf("could not parse result: %w", err)
	}
	if rpcErr := base.RPCError(); rpcErr != nil {
		return nil, rpcErr
	}
	return body.Result, nil
}

func (t *httpTransport) Close() error {
	return nil
}
