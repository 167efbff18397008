package sqlinline

const QInsertProduct = `--sql 2f9c1d44-8a6e-4b8b-9a0f-6c3d2e1b7a55
insert into products(id, name, description, price, stock, is_digital, image_path)
values ($1::uuid, $2, $3, $4, $5, $6, nullif($7, ''))
returning created_at;
`

const QListProducts = `--sql 7b4e9f02-3c1a-4d7e-8f26-95e0c4ab6d18
select id, name, description, price, stock, is_digital, coalesce(image_path, ''), created_at
from products
order by created_at desc
limit $1::int offset $2::int;
`

const QSelectProductByID = `--sql c81d5a37-640b-49e2-bf7c-1d2aa9f03e64
select id, name, description, price, stock, is_digital, coalesce(image_path, ''), created_at
from products
where id = $1::uuid
limit 1;
`
