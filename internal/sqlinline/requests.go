package sqlinline

const QEnqueueRequest = `--sql 82c2fd78-c9d7-4409-97cc-0f8325d9e66a
insert into generation_requests (id, topic_id, status, language, created_at, updated_at)
values ($1::uuid, $2::uuid, 'QUEUED', $3::text, now(), now());
`

const QSelectRequest = `--sql 44640e62-dd6f-4bab-9001-a7c61b851418
select id, topic_id, status, language, result_json, coalesce(error_message, ''), created_at, updated_at
from generation_requests
where id = $1::uuid;
`

const QUpdateRequestStatus = `--sql 5829791a-0bd5-40b6-ac88-27274fa99de5
update generation_requests
set status = $2::text,
    error_message = coalesce($3::text, error_message),
    result_json = coalesce($4::jsonb, result_json),
    updated_at = now()
where id = $1::uuid;
`

const QClaimNextRequest = `--sql 05c349f0-12b1-46dc-b7aa-fe1addb2e190
with next_request as (
    select id
    from generation_requests
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update generation_requests
    set status = 'RUNNING', updated_at = now()
    where id in (select id from next_request)
    returning id, topic_id, status, language, created_at, updated_at
)
select * from updated;
`
