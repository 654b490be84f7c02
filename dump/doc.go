/*
Package dump provides I/O operations for collected account states.

Account state is the key-value storage of the on-chain account. Dumps make
it possible to decode resources and drive channels offline: the state is
pulled once (see 'paychan fetch') and then read from the file system.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
