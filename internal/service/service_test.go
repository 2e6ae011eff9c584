package service

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/util"
)

type sentNotification struct {
	Event string
	Order models.Order
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) NotifyOrder(_ context.Context, event string, o *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Event: event, Order: *o})
}

func (n *recordingNotifier) Sent() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mykafka.Event
	done   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 16)}
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, e mykafka.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

type fixture struct {
	db   *gorm.DB
	repo *repo.GormRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return fixture{db: db, repo: &repo.GormRepo{DB: db}}
}

func userPrincipal(u *models.User) models.Principal {
	return models.Principal{UserID: u.ID, Role: u.Role}
}

var admin = models.Principal{UserID: 1_000_000, Role: models.RoleAdmin}

func pageOf(page, size int) util.Page {
	return util.Page{Page: page, Size: size}
}
