package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key mirroring a student's active login JTI.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// PendingRegistrationKey returns the cache key holding an unverified
// registration payload, keyed by the opaque token handed to the client.
func (r *CacheKeyStruct) PendingRegistrationKey(token string) string {
	return fmt.Sprintf("reg:%s", token)
}

// PresentedQuestionsKey returns the cache key recording the question IDs
// last presented to a student, so submission can record how many were shown.
func (r *CacheKeyStruct) PresentedQuestionsKey(studentID int) string {
	return fmt.Sprintf("student:%d:quiz:questions", studentID)
}

var CacheKey = NewCacheKeyStruct()
