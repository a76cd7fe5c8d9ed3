package nodefs

// Open flags. Values are the Linux ones, which is what the provider speaks.
//
//nolint:revive // names mirror fs.constants
const (
	O_RDONLY    = 0
	O_WRONLY    = 1
	O_RDWR      = 2
	O_CREAT     = 64
	O_EXCL      = 128
	O_NOCTTY    = 256
	O_TRUNC     = 512
	O_APPEND    = 1024
	O_NONBLOCK  = 2048
	O_DSYNC     = 4096
	O_DIRECT    = 16384
	O_DIRECTORY = 65536
	O_NOFOLLOW  = 131072
	O_NOATIME   = 262144
	O_SYNC      = 1052672
	O_SYMLINK   = 2097152
)

// File type bits of a stat mode.
//
//nolint:revive // names mirror fs.constants
const (
	S_IFMT   = 0o170000
	S_IFREG  = 0o100000
	S_IFDIR  = 0o040000
	S_IFCHR  = 0o020000
	S_IFBLK  = 0o060000
	S_IFIFO  = 0o010000
	S_IFLNK  = 0o120000
	S_IFSOCK = 0o140000
)

// Permission bits.
//
//nolint:revive // names mirror fs.constants
const (
	S_IRWXU = 0o700
	S_IRUSR = 0o400
	S_IWUSR = 0o200
	S_IXUSR = 0o100
	S_IRWXG = 0o070
	S_IRGRP = 0o040
	S_IWGRP = 0o020
	S_IXGRP = 0o010
	S_IRWXO = 0o007
	S_IROTH = 0o004
	S_IWOTH = 0o002
	S_IXOTH = 0o001
)

// Access check bits for [FS.AccessSync].
//
//nolint:revive // names mirror fs.constants
const (
	F_OK = 0
	R_OK = 4
	W_OK = 2
	X_OK = 1
)

// Copy flags for [FS.CopyFileSync]. Only COPYFILE_EXCL changes behavior;
// the clone flags are accepted and ignored.
//
//nolint:revive // names mirror fs.constants
const (
	COPYFILE_EXCL          = 1
	COPYFILE_FICLONE       = 2
	COPYFILE_FICLONE_FORCE = 4
)

// Constants is the numeric constants table, keyed by name.
var Constants = map[string]int{
	"O_RDONLY":    O_RDONLY,
	"O_WRONLY":    O_WRONLY,
	"O_RDWR":      O_RDWR,
	"O_CREAT":     O_CREAT,
	"O_EXCL":      O_EXCL,
	"O_NOCTTY":    O_NOCTTY,
	"O_TRUNC":     O_TRUNC,
	"O_APPEND":    O_APPEND,
	"O_NONBLOCK":  O_NONBLOCK,
	"O_DSYNC":     O_DSYNC,
	"O_DIRECT":    O_DIRECT,
	"O_DIRECTORY": O_DIRECTORY,
	"O_NOFOLLOW":  O_NOFOLLOW,
	"O_NOATIME":   O_NOATIME,
	"O_SYNC":      O_SYNC,
	"O_SYMLINK":   O_SYMLINK,

	"S_IFMT":   S_IFMT,
	"S_IFREG":  S_IFREG,
	"S_IFDIR":  S_IFDIR,
	"S_IFCHR":  S_IFCHR,
	"S_IFBLK":  S_IFBLK,
	"S_IFIFO":  S_IFIFO,
	"S_IFLNK":  S_IFLNK,
	"S_IFSOCK": S_IFSOCK,

	"S_IRWXU": S_IRWXU,
	"S_IRUSR": S_IRUSR,
	"S_IWUSR": S_IWUSR,
	"S_IXUSR": S_IXUSR,
	"S_IRWXG": S_IRWXG,
	"S_IRGRP": S_IRGRP,
	"S_IWGRP": S_IWGRP,
	"S_IXGRP": S_IXGRP,
	"S_IRWXO": S_IRWXO,
	"S_IROTH": S_IROTH,
	"S_IWOTH": S_IWOTH,
	"S_IXOTH": S_IXOTH,

	"F_OK": F_OK,
	"R_OK": R_OK,
	"W_OK": W_OK,
	"X_OK": X_OK,

	"COPYFILE_EXCL":          COPYFILE_EXCL,
	"COPYFILE_FICLONE":       COPYFILE_FICLONE,
	"COPYFILE_FICLONE_FORCE": COPYFILE_FICLONE_FORCE,
}
