package inmemdb

import (
	"sync"

	"github.com/ikedalab/classinfo/core/announcement"
	"github.com/ikedalab/classinfo/core/schedule"
	"github.com/ikedalab/classinfo/core/subscriber"
	"github.com/ikedalab/classinfo/core/task"
)

type (
	scheduleTable struct {
		mutex sync.RWMutex
		rows  []schedule.Schedule // insertion order preserved
	}

	taskTable struct {
		mutex sync.RWMutex
		rows  []task.Task
	}

	announcementTable struct {
		mutex sync.RWMutex
		rows  []announcement.Announcement
	}

	subscriberTable struct {
		mutex sync.RWMutex
		rows  []subscriber.Subscriber
	}

	DB struct {
		schedule     *scheduleTable
		task         *taskTable
		announcement *announcementTable
		subscriber   *subscriberTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		schedule:     &scheduleTable{},
		task:         &taskTable{},
		announcement: &announcementTable{},
		subscriber:   &subscriberTable{},
	}
	return db, nil
}
