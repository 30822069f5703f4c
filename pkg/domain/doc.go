/*
Package domain contains the core types of the switchboard conversation engine.

It is kept free of I/O and transport details. Adapters translate their own
payloads into these types and back.

# Key Entities

  - Update: a raw inbound message as delivered by a transport.
  - Event: a classified update (command, selection, text, contact, location).
  - Session: the per-party conversation stack plus the records collected so far.
  - Field and Record: the data-collection model shared by every capture frame.
  - Render: an instruction for the transport (replace the last prompt or send a new one).
*/
package domain
