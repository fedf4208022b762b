package sqlinline

const QInsertTopic = `--sql e5e0d373-b789-406e-bcf2-a4f0c5836485
insert into topics (id, title, transcript, language, skills, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text[], now(), now());
`

const QSelectTopic = `--sql fb344421-1bd0-45b3-b476-5dfbfc6afd91
select id, title, transcript, language, coalesce(skills, '{}'::text[]), created_at, updated_at
from topics
where id = $1::uuid;
`
