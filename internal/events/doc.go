// Package events lets services announce what happened without knowing who
// reacts. The user service emits user.registered and user.deleted; the mailer
// subscribes and turns them into background mail jobs.
package events
