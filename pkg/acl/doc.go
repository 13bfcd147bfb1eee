// Package acl decides whether a subject may read, write or invoke on an
// endpoint and cluster.
//
// Entries grant a privilege to subjects on targets within one fabric. A
// request is allowed when any entry matching its fabric and auth mode grants
// the required privilege, lists the subject (or lists none), and covers the
// target (or covers everything). PASE sessions during commissioning are
// implicitly administrators.
//
// Spec References:
//   - Section 6.6: Access Control
//   - Section 6.6.6: Conceptual Access Control Algorithm
//   - Section 9.10.5: Access Control Cluster Data Types
package acl
