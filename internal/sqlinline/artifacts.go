package sqlinline

const QInsertArtifact = `--sql bada8407-fd95-4af5-bccf-730e6295470e
insert into artifacts (
    id, topic_id, request_id, format, status,
    url, hash, fallback, provider, error_code, error_message, created_at
)
values (
    $1::uuid, $2::uuid, $3::uuid, $4::text, $5::text,
    $6::text, $7::text, $8::boolean, $9::text, $10::text, $11::text, now()
);
`

const QSelectArtifactsByTopic = `--sql 5e50432d-0249-48b7-a3b4-93da840b0780
select id, topic_id, request_id, format, status,
       url, hash, fallback, provider, coalesce(error_code, ''), coalesce(error_message, ''), created_at
from artifacts
where topic_id = $1::uuid
order by created_at desc, format asc;
`
