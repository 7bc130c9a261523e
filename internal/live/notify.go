package live

import (
	"context"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// NotifyingStore wraps a store.Store and publishes an Event after every
// successful write. Reads pass straight through the embedded Store.
type NotifyingStore struct {
	store.Store
	pub Publisher
}

// WithNotifications decorates s.
func WithNotifications(s store.Store, pub Publisher) *NotifyingStore {
	return &NotifyingStore{Store: s, pub: pub}
}

// A paper write can change the published feed in either direction
// (publish or unpublish), so both topics are notified.
func (n *NotifyingStore) paperChanged(ctx context.Context, owner, kind, id string) {
	n.pub.Publish(ctx, Event{Topic: TopicOwnerPapers(owner), Kind: kind, ID: id})
	n.pub.Publish(ctx, Event{Topic: TopicPublishedPapers, Kind: kind, ID: id})
}

func (n *NotifyingStore) CreatePaper(ctx context.Context, p *models.PaperDoc) error {
	if err := n.Store.CreatePaper(ctx, p); err != nil {
		return err
	}
	n.paperChanged(ctx, p.OwnerUID, KindCreated, p.ID)
	return nil
}

func (n *NotifyingStore) UpdatePaper(ctx context.Context, p *models.PaperDoc) error {
	if err := n.Store.UpdatePaper(ctx, p); err != nil {
		return err
	}
	n.paperChanged(ctx, p.OwnerUID, KindUpdated, p.ID)
	return nil
}

func (n *NotifyingStore) DeletePaper(ctx context.Context, id string) error {
	existing, err := n.Store.GetPaper(ctx, id)
	if err != nil {
		return err
	}
	if err := n.Store.DeletePaper(ctx, id); err != nil {
		return err
	}
	n.paperChanged(ctx, existing.OwnerUID, KindDeleted, id)
	return nil
}

func (n *NotifyingStore) CreateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	if err := n.Store.CreateAnswer(ctx, a); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicOwnerAnswers(a.OwnerUID), Kind: KindCreated, ID: a.ID})
	return nil
}

func (n *NotifyingStore) UpdateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	if err := n.Store.UpdateAnswer(ctx, a); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicOwnerAnswers(a.OwnerUID), Kind: KindUpdated, ID: a.ID})
	return nil
}

func (n *NotifyingStore) DeleteAnswer(ctx context.Context, id string) error {
	existing, err := n.Store.GetAnswer(ctx, id)
	if err != nil {
		return err
	}
	if err := n.Store.DeleteAnswer(ctx, id); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicOwnerAnswers(existing.OwnerUID), Kind: KindDeleted, ID: id})
	return nil
}

func (n *NotifyingStore) CreateUniversity(ctx context.Context, u *models.University) error {
	if err := n.Store.CreateUniversity(ctx, u); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicUniversities, Kind: KindCreated, ID: u.ID})
	return nil
}

func (n *NotifyingStore) UpdateUniversity(ctx context.Context, u *models.University) error {
	if err := n.Store.UpdateUniversity(ctx, u); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicUniversities, Kind: KindUpdated, ID: u.ID})
	return nil
}

func (n *NotifyingStore) DeleteUniversity(ctx context.Context, id string) error {
	if err := n.Store.DeleteUniversity(ctx, id); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicUniversities, Kind: KindDeleted, ID: id})
	return nil
}

func (n *NotifyingStore) CreateJob(ctx context.Context, j *models.ExtractionJob) error {
	if err := n.Store.CreateJob(ctx, j); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicOwnerJobs(j.OwnerUID), Kind: KindCreated, ID: j.ID})
	return nil
}

func (n *NotifyingStore) UpdateJob(ctx context.Context, j *models.ExtractionJob) error {
	if err := n.Store.UpdateJob(ctx, j); err != nil {
		return err
	}
	n.pub.Publish(ctx, Event{Topic: TopicOwnerJobs(j.OwnerUID), Kind: KindUpdated, ID: j.ID})
	return nil
}
