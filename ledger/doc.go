/*
Package ledger keeps local accounts and their off-chain channels.

Account owns one channel per counterparty and routes protocol messages to
it recording the history of issued and received messages. Accounts are
stored in BoltDB via BoltStore.
*/
package ledger
