// Package mailer sends account notification emails.
//
// Mail is never sent on the request path. User lifecycle events are turned
// into SendJobs by NotificationHandler and executed by the background worker
// pool; a failed delivery is logged and otherwise ignored.
package mailer
