package db

// schemaLockKey identifies the advisory lock held while postgres DDL runs.
const schemaLockKey int64 = 0x6865726f // "hero"

var postgresSchema = []string{
	`create table if not exists hero (
		id serial primary key,
		name varchar not null,
		secret_name varchar not null,
		age integer
	)`,
	`create index if not exists ix_hero_name on hero (name)`,
	`create index if not exists ix_hero_age on hero (age)`,
}

var sqliteSchema = []string{
	`create table if not exists hero (
		id integer primary key autoincrement,
		name varchar not null,
		secret_name varchar not null,
		age integer
	)`,
	`create index if not exists ix_hero_name on hero (name)`,
	`create index if not exists ix_hero_age on hero (age)`,
}
