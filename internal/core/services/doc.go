// Package services implements the core application logic of Clipbrd.
//
// Services implement the driving ports and depend only on domain types and
// driven ports. The three services are:
//
//   - IndexManager: keeps the lexical index synchronized with the watched
//     folder and serves context queries
//   - Pipeline: the event state machine turning clipboard/screenshot
//     events into delivered answers
//   - RequestBroker: memoizes answers and collapses concurrent identical
//     requests into a single computation
package services
