// Package cache provides the optional Redis-backed employee read cache.
//
// The cache is strictly an accelerator: every failure, including a
// down Redis, degrades to a miss and the caller falls through to the
// database. Entries are stored via Employee's binary marshaling with a
// configurable TTL and invalidated on every write.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hollmark/staffd/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const employeeKeyPrefix = "employee:"

// EmployeeCache caches employees by id.
type EmployeeCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zerolog.Logger
}

// NewEmployeeCache wraps an established Redis client. The client must
// be non-nil; callers decide whether caching is enabled at all.
func NewEmployeeCache(client *redis.Client, ttl time.Duration, log *zerolog.Logger) *EmployeeCache {
	return &EmployeeCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func employeeKey(id int32) string {
	return fmt.Sprintf("%s%d", employeeKeyPrefix, id)
}

// Get returns the cached employee and whether it was present.
func (c *EmployeeCache) Get(ctx context.Context, id int32) (models.Employee, bool) {
	data, err := c.client.Get(ctx, employeeKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Int32("id", id).Msg("employee cache read failed")
		}
		return models.Employee{}, false
	}

	var employee models.Employee
	if err := employee.UnmarshalBinary(data); err != nil {
		c.log.Warn().Err(err).Int32("id", id).Msg("employee cache entry corrupt")
		return models.Employee{}, false
	}

	return employee, true
}

// Set stores the employee under its id for the configured TTL.
func (c *EmployeeCache) Set(ctx context.Context, employee models.Employee) {
	if err := c.client.Set(ctx, employeeKey(employee.ID), employee, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int32("id", employee.ID).Msg("employee cache write failed")
	}
}

// Invalidate drops the cached entry for id.
func (c *EmployeeCache) Invalidate(ctx context.Context, id int32) {
	if err := c.client.Del(ctx, employeeKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Int32("id", id).Msg("employee cache invalidation failed")
	}
}
