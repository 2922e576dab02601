package protocol

// This package implements the decoding of the lines a lobby chat server sends
// to its clients, and the encoding of the few things a client sends back.
//
// The server speaks two dialects over the same connection, and a single block
// read from the socket may contain lines of both.
//
// - `Classic` - the legacy numeric-code dialect. Payloads are quoted.
// - `Init6`   - a space-delimited dialect. Payloads start at a fixed column.
//
// === General Syntax
//
// - lines are `\r\n` delimited
// - tokens are separated by a single space
// - whitespace-only lines carry nothing and are dropped
//
// === Classic
//
//   ```
//     <code> <LABEL> <name> <flags> [<client>] "<payload>"\r\n
//   ```
//
// e.g.
//
//   ```
//     1005 TALK GLUECK2000 0010 "Hello there"\r\n
//     1007 CHANNEL "Trade"\r\n
//     1018 INFO "Listing 3 channels:"\r\n
//   ```
//
// The payload is everything between the first `"` and the final character of
// the line. Quotes inside the payload are not escaped.
//
// === Init6
//
//   ```
//     <COMMAND> <EVENT> <DIRECTION> <x> <flags> <x> <name> <payload...>\r\n
//   ```
//
// e.g.
//
//   ```
//     USER TALK FROM 0 0010 0 GLUECK2000 Hello there\r\n
//     USER IN 0 0 0010 0 GLUECK2000 TAHC\r\n
//     CHANNEL JOIN 0 0 0 Trade\r\n
//     SERVER INFO 0 0 0 Your friends are:\r\n
//   ```
//
// USER payloads start at column 8, CHANNEL and SERVER payloads at column 6.
// The client tag travels byte-reversed and lowercase (`TAHC` is `[CHAT]`).
//
// === Classification
//
// Every line is classified exactly once into a Line which records the dialect,
// the raw code or command/event/direction and a normalized Kind. Consumers
// switch on Kind and read payloads through the Line accessors, they never
// re-tokenize the raw text.
//
// Lines that do not map onto a known Kind classify as KindUnknown. The server
// emits plenty of lines nobody cares about, so this is not an error.
//
// === Login
//
// Classic:
//
//   ```
//     > \x03\x04<username>\r\n
//     > <password>\r\n
//   ```
//
// Init6:
//
//   ```
//     > C1\r\n
//     > ACCT <username>\r\n
//     > PASS <password>\r\n
//     > HOME <channel>\r\n
//     > LOGIN\r\n
//   ```
