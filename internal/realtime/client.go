package realtime

import (
	"sync"

	"app/internal/usecase"
)

// Envelopeはwebsocket上のJSONメッセージ。
// client→server: SendComment / server→client: LoadComments, ReceiveComment, Error
type Envelope struct {
	Type       string               `json:"type"`
	Body       string               `json:"body,omitempty"`
	ActivityID string               `json:"activityId,omitempty"`
	Comment    *usecase.CommentDTO  `json:"comment,omitempty"`
	Comments   []usecase.CommentDTO `json:"comments,omitempty"`
	Error      string               `json:"error,omitempty"`
}

const (
	EventSendComment    = "SendComment"
	EventLoadComments   = "LoadComments"
	EventReceiveComment = "ReceiveComment"
	EventError          = "Error"
)

// Clientは1本のwebsocket接続。
// Sendはサーバー側からcloseしない（並行broadcastからのpanicを避ける）。
// 停止の合図はdoneで行い、Closeは冪等
type Client struct {
	ID          string
	UserID      string
	Username    string
	DisplayName string

	Send chan Envelope

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id string, claims *usecase.AccessClaims, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		ID:          id,
		UserID:      claims.UserID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Send:        make(chan Envelope, sendQueueSize),
		done:        make(chan struct{}),
	}
}

// Doneは接続終了の合図チャネル
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Closeはgoroutineに停止を合図する（冪等）。Sendはcloseしない
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
