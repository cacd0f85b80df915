/*
Package message defines the typed records exchanged between nodes and the
clause store (spec §4.B). A Message carries a source Addr, a destination
Addr, a Kind tag, and the payload fields relevant to that Kind. Go has no
sum types, so the payload is expressed as a set of optional fields guarded
by Kind, following the same tag-plus-fields idiom the teacher uses for
Status in cnf.Status.
*/
package message
