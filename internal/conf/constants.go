package conf

// ValidCountLength - Number of bytes used for the valid record count that starts every block - 4 bytes
const ValidCountLength = 4

// NextBlockLength - Number of bytes used for the next block pointer in chained blocks - 4 bytes
const NextBlockLength = 4

// BucketCountersLength - Number of bytes used for record count and overflow block count in buckets - 2 x 4 bytes
const BucketCountersLength = 8

// BlockHeaderLength - Header length of a plain heap file block
const BlockHeaderLength = ValidCountLength

// ChainedHeaderLength - Header length of an overflow (chained) block
const ChainedHeaderLength = ValidCountLength + NextBlockLength

// BucketHeaderLength - Header length of a hash file bucket
const BucketHeaderLength = ChainedHeaderLength + BucketCountersLength

// NextBlockOffset - Block offset to the next block pointer
const NextBlockOffset = ValidCountLength

// RecordCountOffset - Bucket offset to the number of records in the whole chain
const RecordCountOffset = ChainedHeaderLength

// OverflowBlockCountOffset - Bucket offset to the number of overflow blocks in the chain
const OverflowBlockCountOffset = RecordCountOffset + 4

// NoBlock - Sentinel used as next block pointer for the end of a chain
const NoBlock int32 = -1

// DataFileSuffix - Suffix of the file holding the blocks
const DataFileSuffix = ".dat"

// HeapMetaFileSuffix - Suffix of the file holding block count and the empty/partial block indices
const HeapMetaFileSuffix = "_heap.dat"

// HashMetaFileSuffix - Suffix of the file holding hash power, split pointer and record count
const HashMetaFileSuffix = "_hash.dat"

// OverflowNameSuffix - Appended to a hash file name to form the name of its overflow file
const OverflowNameSuffix = "_overflow"

// InitialBuckets - Number of buckets (M) a hash file starts with and never shrinks below
const InitialBuckets = 2

// MaxDensity - A split is done while records/capacity is above this value after an insert
const MaxDensity = 0.8

// MinDensity - A merge is done while records/capacity is below this value after a delete
const MinDensity = 0.5
