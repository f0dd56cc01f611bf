package realtime

import (
	"log/slog"
	"sync"
)

// Hubはactivity毎のグループを持つプロセス内レジストリ。
// サービス起動時に作り、停止まで生きる
type Hub struct {
	log *slog.Logger

	mu     sync.RWMutex
	groups map[string]*Group
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:    log,
		groups: make(map[string]*Group),
	}
}

// GetOrCreateGroupは初回のjoinで暗黙にグループを作る。
// 空になっても消さない（再joinされなければ放置で問題ない規模）
func (h *Hub) GetOrCreateGroup(activityID string) *Group {
	h.mu.Lock()
	defer h.mu.Unlock()

	if g, ok := h.groups[activityID]; ok {
		return g
	}

	g := NewGroup(h.log, activityID)
	h.groups[activityID] = g
	return g
}

// Groupは1 activityの接続集合とfanout。
// Join/Leave/Broadcastは並行に呼ばれても安全
type Group struct {
	log        *slog.Logger
	ActivityID string

	mu      sync.RWMutex
	members map[string]*Client
}

func NewGroup(log *slog.Logger, activityID string) *Group {
	return &Group{
		log:        log,
		ActivityID: activityID,
		members:    make(map[string]*Client),
	}
}

func (g *Group) Join(client *Client) {
	if client == nil || client.ID == "" {
		return
	}

	g.mu.Lock()
	g.members[client.ID] = client
	g.mu.Unlock()

	connectionsGauge.Inc()
	g.log.Info("realtime.member.join",
		"activity_id", g.ActivityID,
		"connection_id", client.ID,
		"username", client.Username,
	)
}

// Leaveはメンバーから外してからclientに停止を合図する。
// この順序でbroadcast中のポインタ保持と競合しない
func (g *Group) Leave(connectionID string) {
	if connectionID == "" {
		return
	}

	g.mu.Lock()
	cl, ok := g.members[connectionID]
	delete(g.members, connectionID)
	g.mu.Unlock()

	if !ok {
		return
	}

	cl.Close()
	connectionsGauge.Dec()
	g.log.Info("realtime.member.leave",
		"activity_id", g.ActivityID,
		"connection_id", connectionID,
	)
}

// Broadcastは全メンバーに配る。publisher自身も含む。
// 詰まったメンバーを待たない：queueが一杯の接続は切断する
// （1本の遅い接続がグループ全体を止めないため）
func (g *Group) Broadcast(env Envelope) {
	var slow []string

	g.mu.RLock()
	for _, m := range g.members {
		select {
		case <-m.Done():
			continue
		default:
		}

		select {
		case m.Send <- env:
		default:
			slow = append(slow, m.ID)
		}
	}
	g.mu.RUnlock()

	messagesTotal.Inc()

	for _, id := range slow {
		slowDisconnectsTotal.Inc()
		g.log.Warn("realtime.member.slow_disconnect",
			"activity_id", g.ActivityID,
			"connection_id", id,
		)
		g.Leave(id)
	}
}

// Sizeは現在のメンバー数（テスト用）
func (g *Group) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}
