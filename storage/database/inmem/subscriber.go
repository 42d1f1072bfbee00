package inmemdb

import (
	"context"

	"github.com/ikedalab/classinfo/core/subscriber"
)

type subscriberRepository struct {
	db *subscriberTable
}

var _ subscriber.Repository = (*subscriberRepository)(nil)

func NewSubscriberRepository(db *DB) subscriber.Repository {
	return &subscriberRepository{db: db.subscriber}
}

func (repo *subscriberRepository) CheckEmailUniqueness(_ context.Context, email string, excluded ...subscriber.Subscriber) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.rows {
		if sub.Email != email {
			continue
		}
		var isExcluded bool
		for _, ex := range excluded {
			if ex.ID == sub.ID {
				isExcluded = true
				break
			}
		}
		if !isExcluded {
			return subscriber.ErrEmailExists
		}
	}
	return nil
}

func (repo *subscriberRepository) CreateSubscriber(_ context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, sub)
	return sub, nil
}

func (repo *subscriberRepository) QueryAllSubscribers(_ context.Context) ([]subscriber.Subscriber, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]subscriber.Subscriber, len(repo.db.rows))
	copy(subs, repo.db.rows)
	return subs, nil
}

func (repo *subscriberRepository) GetSubscriberByID(_ context.Context, id string) (subscriber.Subscriber, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.rows {
		if sub.ID == id {
			return sub, nil
		}
	}
	return subscriber.Subscriber{}, subscriber.ErrNotFound
}

func (repo *subscriberRepository) GetSubscriberByEmail(_ context.Context, email string) (subscriber.Subscriber, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.rows {
		if sub.Email == email {
			return sub, nil
		}
	}
	return subscriber.Subscriber{}, subscriber.ErrNotFound
}

func (repo *subscriberRepository) UpdateSubscriber(_ context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, row := range repo.db.rows {
		if row.ID == sub.ID {
			repo.db.rows[i] = sub
			return sub, nil
		}
	}
	return subscriber.Subscriber{}, subscriber.ErrNotFound
}

func (repo *subscriberRepository) DeleteSubscribersByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	kept := repo.db.rows[:0]
	for _, row := range repo.db.rows {
		var drop bool
		for _, id := range ids {
			if row.ID == id {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, row)
		}
	}
	repo.db.rows = kept
	return nil
}
