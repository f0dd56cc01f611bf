package realtime

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"app/internal/usecase"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	maxFrameBytes        = 1 << 16
)

// access tokenの検証役（TokenServiceが満たす）
type TokenParser interface {
	ParseAccessToken(raw string) (*usecase.AccessClaims, error)
}

// コメントの永続化と履歴取得（CommentUsecaseが満たす）
type CommentService interface {
	Create(ctx context.Context, authorID string, activityID string, body string) (*usecase.CommentDTO, error)
	List(ctx context.Context, activityID string) ([]usecase.CommentDTO, error)
}

// Gatewayは/chatのwebsocketエントリポイント。
// 接続時にaccess_tokenを検証してactivityIdのグループにjoinさせる
type Gateway struct {
	log      *slog.Logger
	hub      *Hub
	tokens   TokenParser
	comments CommentService

	originPatterns []string
	sendQueueSize  int
	writeTimeout   time.Duration
}

func NewGateway(log *slog.Logger, hub *Hub, tokens TokenParser, comments CommentService, originPatterns []string) *Gateway {
	return &Gateway{
		log:            log,
		hub:            hub,
		tokens:         tokens,
		comments:       comments,
		originPatterns: originPatterns,
		sendQueueSize:  defaultSendQueueSize,
		writeTimeout:   defaultWriteTimeout,
	}
}

// ServeHTTPでhttp.Handlerとしてマウントできるようにする
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWS(w, r)
}

func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	// このtransportはAuthorizationヘッダを運べないのでquery parameterで受ける
	rawToken := r.URL.Query().Get("access_token")
	claims, err := g.tokens.ParseAccessToken(rawToken)
	if err != nil {
		g.log.Info("realtime.reject.token", "remote", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	activityID := r.URL.Query().Get("activityId")
	if activityID == "" {
		http.Error(w, "activityId is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Error("realtime.accept.fail", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	conn.SetReadLimit(maxFrameBytes)

	connectionID := newConnectionID()
	client := NewClient(connectionID, claims, g.sendQueueSize)
	group := g.hub.GetOrCreateGroup(activityID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var closeOnce sync.Once
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			group.Leave(connectionID)
			client.Close()
			_ = conn.Close(code, reason)
			cancel()
		})
	}

	// writer：queueに積まれたenvelopeを順に書く
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)

		for {
			select {
			case <-ctx.Done():
				return
			case <-client.Done():
				// queue溢れなどgroup側からLeaveされた場合もtransportごと閉じる
				// （shutdown経由で先に閉じられていれば何もしない）
				shutdown(websocket.StatusPolicyViolation, "send queue overflow")
				return
			case env := <-client.Send:
				if err := g.writeEnvelope(ctx, conn, env); err != nil {
					g.log.Info("realtime.write.fail",
						"connection_id", connectionID,
						"close_status", websocket.CloseStatus(err),
					)
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	// 過去分を先にqueueへ積んでからjoinする。
	// これでこの接続のqueue上ではLoadCommentsが必ずbroadcastより先になり、
	// join後のpublishが二重に届くことはない
	backlog, err := g.comments.List(ctx, activityID)
	if err != nil {
		shutdown(websocket.StatusInternalError, "history unavailable")
		<-writerDone
		return
	}
	client.Send <- Envelope{Type: EventLoadComments, Comments: backlog}

	group.Join(client)
	g.log.Info("realtime.connect",
		"connection_id", connectionID,
		"activity_id", activityID,
		"username", claims.Username,
	)

	// reader：接続が切れるまでコマンドを処理する。
	// 1接続1ループなので同じpublisherのメッセージ順序は保たれる
	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			shutdown(websocket.StatusNormalClosure, "bye")
			break
		}

		switch env.Type {
		case EventSendComment:
			g.handleSendComment(ctx, client, group, activityID, env)
		default:
			g.sendToClient(client, Envelope{Type: EventError, Error: "unknown command"})
		}
	}

	<-writerDone
}

func (g *Gateway) handleSendComment(ctx context.Context, client *Client, group *Group, activityID string, env Envelope) {
	// commandにactivityIdが入っていてもjoin済みのtopicを使う
	comment, err := g.comments.Create(ctx, client.UserID, activityID, env.Body)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			g.sendToClient(client, Envelope{Type: EventError, Error: err.Error()})
			return
		}
		g.sendToClient(client, Envelope{Type: EventError, Error: "could not add comment"})
		return
	}

	// 永続化してからpublisher自身も含めて全員に配る
	group.Broadcast(Envelope{Type: EventReceiveComment, Comment: comment})
}

// 呼び出し元の接続にだけ送る。詰まっていたら諦める（broadcastと同じ方針）
func (g *Gateway) sendToClient(client *Client, env Envelope) {
	select {
	case <-client.Done():
	case client.Send <- env:
	default:
	}
}

func (g *Gateway) writeEnvelope(ctx context.Context, conn *websocket.Conn, env Envelope) error {
	wctx, cancel := context.WithTimeout(ctx, g.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, env)
}

func newConnectionID() string {
	b := make([]byte, 10)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
