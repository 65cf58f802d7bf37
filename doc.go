/*
Package sarfile implements SAR, a single-file archive format built for
compact random-access reads: many member files concatenated behind one
binary header, so a reader can seek straight to any member without
scanning the archive. Member bytes are stored raw; the format has no
compression, checksums or per-member metadata beyond name and size.

Data Structure Documentation

Archive

An archive is a fixed preamble, the encoded header, then the member
bytes back to back in header order.

	Archive layout:
	+----------------+-------------------------+--------+----------+-----+----------+
	| magic "SAR\n"  | header length (8 bytes) | header | member 1 | ... | member n |
	+----------------+-------------------------+--------+----------+-----+----------+

Header

The header stores two integer tables and the raw name bytes. Each table
is packed at the smallest of 1, 2, 4 or 8 bytes per value that can hold
the table's maximum; the two width selectors come first. All integers
are little-endian.

	Header layout:
	+----------------------+----------------------+-----------------+
	| size width (1 byte)  | name width (1 byte)  | count (8 bytes) |
	+----------------------+----------------------+-----------------+
	| member sizes (count * size width)                             |
	+---------------------------------------------------------------+
	| name lengths (count * name width)                             |
	+---------------------------------------------------------------+
	| names, UTF-8, no separators                                   |
	+---------------------------------------------------------------+

Member offsets are derived, not stored: member i starts at
preamble + header + sum of the sizes before i. A Header can be sharded
into contiguous blocks for parallel readers; a shard's InitOffset
carries the byte size of the members dropped from the front, so offsets
derived from the shard alone match the full header's.

Reads

Every member lookup returns an ItemReader, a read-only seekable view of
exactly that member's byte range over its own freshly opened stream.
Seeks outside the member fail with ErrOutOfRange; reads end with io.EOF
at the member boundary.
*/
package sarfile
