// Package domain contains the core business entities of the task manager:
// users, their tasks, and the rules for patching and querying them. It has no
// knowledge of HTTP or storage.
package domain
