/*
Package channel implements off-chain payment channel between two accounts.

Each side of the channel is backed by on-chain escrow resource. The channel
is ready for off-chain transfers when both sides are open. Transfer is a
three-step exchange:

	requester                         responder
	Transfer(amount)  -- request -->  Conform(request)
	ProcessTransferConform(conform) <-- conform --

Every accepted update increments channel version by one and conserves total
balance of both parties. Validation failures leave local state untouched.

Channel is not safe for concurrent use.
*/
package channel
