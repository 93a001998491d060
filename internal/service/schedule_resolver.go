package service

import (
	"time"

	"fitcoach/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The resolver is a set of pure functions over in-memory schedule records.
// For one user and one day it picks, per plan slot, the single effective
// record:
//
//  1. A personal record for the user wins unconditionally.
//  2. Otherwise premium users take the premium-track global record
//     (isPublic=false), falling back to the free track when the premium
//     track has nothing for the day.
//  3. Non-premium users only ever see the free track (isPublic=true).
//
// No match is not an error; the slot is simply absent for the day.

// pickSlot selects the winning record for one plan slot among the records of
// a single day. Records without a value in the slot are ignored.
func pickSlot(records []domain.Schedule, userID primitive.ObjectID, premium bool, slot domain.PlanSlot) *domain.Schedule {
	var globalPremium, globalFree *domain.Schedule

	for i := range records {
		rec := &records[i]
		if !rec.HasSlot(slot) {
			continue
		}
		if !rec.IsGlobal {
			if rec.UserID != nil && *rec.UserID == userID {
				return rec
			}
			continue
		}
		if rec.IsPublic {
			if globalFree == nil {
				globalFree = rec
			}
		} else {
			if globalPremium == nil {
				globalPremium = rec
			}
		}
	}

	if premium && globalPremium != nil {
		return globalPremium
	}
	return globalFree
}

// dayStartUTC normalizes a timestamp to UTC midnight of its calendar date.
func dayStartUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// businessToday computes "today" as the calendar date in the business
// timezone, reconstructed as a UTC-midnight boundary for querying. Day
// boundaries must never depend on the host clock's zone.
func businessToday(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isLocked reports whether a day's content is view-locked: strictly after
// today and the requester is not premium. Locked days still return their
// content; the client enforces the gate, not the API.
func isLocked(day, today time.Time, premium bool) bool {
	return day.After(today) && !premium
}

// groupByDay buckets records by their UTC-midnight date.
func groupByDay(records []domain.Schedule) map[time.Time][]domain.Schedule {
	grouped := make(map[time.Time][]domain.Schedule)
	for _, rec := range records {
		day := dayStartUTC(rec.Date)
		grouped[day] = append(grouped[day], rec)
	}
	return grouped
}
