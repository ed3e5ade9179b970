// Package redisstore serves identifier mapping keys from the knowledge
// network Redis instance.
package redisstore
