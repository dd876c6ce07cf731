// Package identity implements email based account registration with one
// time verification codes, password login with JWT session tokens, and
// password recovery. Federated login lives in the social subpackage and
// SMTP delivery in mailer.
package identity
